package errors

import (
	goerrors "errors"
	"reflect"
	"strings"
)

// classifier is implemented by errors that know their own metric class,
// such as backend client errors.
type classifier interface {
	MetricClass() string
}

// Classify returns a normalized error class suitable for tagging metrics/logs.
// Errors implementing MetricClass anywhere in the chain win; otherwise the
// innermost concrete type name is used in snake_case-ish form.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var c classifier
	if goerrors.As(err, &c) {
		if class := c.MetricClass(); class != "" {
			return class
		}
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
