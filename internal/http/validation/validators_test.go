package validation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name   string
		maxLen int
		value  string
		want   string
	}{
		{name: "valid input", maxLen: 10, value: "valide"},
		{name: "empty string", maxLen: 10, value: "", want: "Le nom est requis."},
		{name: "whitespace only", maxLen: 10, value: "   ", want: "Le nom est requis."},
		{name: "exceeds max length", maxLen: 5, value: "beaucoup", want: "Le nom ne peut pas dépasser 5 caractères."},
		{name: "exactly max length", maxLen: 5, value: "exact"},
		{name: "accented runes count once", maxLen: 5, value: "éèàùç"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Required("Le nom", tt.maxLen)(tt.value))
		})
	}
}

func TestMinLen(t *testing.T) {
	v := MinLen("Le mot de passe", 6)
	assert.Empty(t, v("secret"))
	assert.Equal(t, "Le mot de passe doit contenir au moins 6 caractères.", v("court"))
	assert.NotEmpty(t, v(""))
}

func TestOptional(t *testing.T) {
	v := Optional("Les remarques", 3)
	assert.Empty(t, v(""))
	assert.Empty(t, v("  abc  "))
	assert.NotEmpty(t, v("abcd"))
}

func TestPattern(t *testing.T) {
	v := Pattern("Le code", regexp.MustCompile(`^\d{3}$`))
	assert.Empty(t, v(""), "empty values are left to Required")
	assert.Empty(t, v("123"))
	assert.Equal(t, "Le code n'est pas valide.", v("12a"))
}

func TestEquals(t *testing.T) {
	v := Equals("différent", "abc")
	assert.Empty(t, v("abc"))
	assert.Equal(t, "différent", v("abd"))
}

func TestOneOf(t *testing.T) {
	v := OneOf("Le rôle", []string{"USER", "ADMIN"})
	assert.Empty(t, v("admin"))
	assert.Empty(t, v(" USER "))
	assert.Equal(t, "Le rôle doit être l'une des valeurs : USER, ADMIN", v("root"))
}

func TestHTTPURL(t *testing.T) {
	v := HTTPURL("L'URL", 50)
	tests := []struct {
		value string
		ok    bool
	}{
		{"", true},
		{"https://cdn.example.com/a.png", true},
		{"http://example.com", true},
		{"ftp://example.com/a.png", false},
		{"/relative.png", false},
		{"https://", false},
		{"https://example.com/" + strings.Repeat("a", 40), false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.ok, v(tt.value) == "")
		})
	}
}

func TestPositiveDecimal(t *testing.T) {
	v := PositiveDecimal("Le prix")
	assert.Empty(t, v("12.50"))
	assert.Empty(t, v("12,50"))
	assert.Equal(t, "Le prix doit être supérieur à 0.", v("0"))
	assert.Equal(t, "Le prix doit être supérieur à 0.", v("-1"))
	assert.Equal(t, "Le prix doit être un nombre.", v("douze"))
}

func TestIntMin(t *testing.T) {
	v := IntMin("Le stock", 0)
	assert.Empty(t, v("0"))
	assert.Empty(t, v(" 42 "))
	assert.Equal(t, "Le stock doit être supérieur ou égal à 0.", v("-1"))
	assert.Equal(t, "Le stock doit être un nombre entier.", v("1.5"))
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 3,75 ")
	assert.NoError(t, err)
	assert.Equal(t, "3.75", d.String())
}

func TestFieldValidator(t *testing.T) {
	t.Run("stops at the first failing validator", func(t *testing.T) {
		errs := New().
			Validate("email", "", Required("L'email", 10), Pattern("L'email", regexp.MustCompile(`@`))).
			Errors()
		assert.Equal(t, map[string]string{"email": "L'email est requis."}, errs)
	})

	t.Run("Fail keeps the first message per field", func(t *testing.T) {
		fv := New().Validate("name", "", Required("Le nom", 10)).Fail("name", "autre").Fail("items", "vide")
		assert.False(t, fv.OK())
		assert.Equal(t, "Le nom est requis.", fv.Errors()["name"])
		assert.Equal(t, "vide", fv.Errors()["items"])
	})

	t.Run("no errors", func(t *testing.T) {
		fv := New().Validate("name", "Alice", Required("Le nom", 10))
		assert.True(t, fv.OK())
		assert.Empty(t, fv.Errors())
	})
}
