package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " est requis."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s ne peut pas dépasser %d caractères.", fieldName, maxLen)
		}
		return ""
	}
}

// MinLen validates that a non-empty value has at least minLen characters.
// Surrounding spaces count, since passwords are compared verbatim.
func MinLen(fieldName string, minLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) < minLen {
			return fmt.Sprintf("%s doit contenir au moins %d caractères.", fieldName, minLen)
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > maxLen {
			return fmt.Sprintf("%s ne peut pas dépasser %d caractères.", fieldName, maxLen)
		}
		return ""
	}
}

// Pattern validates that a non-empty field matches the provided regular expression.
// Pair it with Required when the field is mandatory.
func Pattern(fieldName string, re *regexp.Regexp) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return fieldName + " n'est pas valide."
		}
		return ""
	}
}

// Equals validates that the value matches other exactly.
func Equals(message, other string) Validator {
	return func(v string) string {
		if v != other {
			return message
		}
		return ""
	}
}

// OneOf validates that a field matches one of the provided options (case-insensitive).
func OneOf(fieldName string, options []string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		for _, opt := range options {
			if strings.EqualFold(v, opt) {
				return ""
			}
		}
		return fmt.Sprintf("%s doit être l'une des valeurs : %s", fieldName, strings.Join(options, ", "))
	}
}

// HTTPURL validates an optional http(s) URL.
func HTTPURL(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s ne peut pas dépasser %d caractères.", fieldName, maxLen)
		}
		p, err := url.Parse(v)
		if err != nil || (p.Scheme != "http" && p.Scheme != "https") || p.Host == "" {
			return fieldName + " doit être une URL http(s) valide."
		}
		return ""
	}
}

// PositiveDecimal validates an amount strictly greater than zero. A decimal comma is accepted.
func PositiveDecimal(fieldName string) Validator {
	return func(v string) string {
		d, err := ParseDecimal(v)
		if err != nil {
			return fieldName + " doit être un nombre."
		}
		if !d.IsPositive() {
			return fieldName + " doit être supérieur à 0."
		}
		return ""
	}
}

// IntMin validates that a field is an integer of at least minVal.
func IntMin(fieldName string, minVal int) Validator {
	return func(v string) string {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fieldName + " doit être un nombre entier."
		}
		if i < minVal {
			return fmt.Sprintf("%s doit être supérieur ou égal à %d.", fieldName, minVal)
		}
		return ""
	}
}

// ParseDecimal reads "12.5" or "12,5".
func ParseDecimal(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", "."))
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break
		}
	}
	return fv
}

// Fail records an error computed outside a Validator.
func (fv *FieldValidator) Fail(field, message string) *FieldValidator {
	if _, exists := fv.errors[field]; !exists {
		fv.errors[field] = message
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// OK reports whether no field failed.
func (fv *FieldValidator) OK() bool { return len(fv.errors) == 0 }
