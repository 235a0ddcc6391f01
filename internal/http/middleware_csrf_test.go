package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func TestCSRF_GetMintsTokenCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	c := cookieFrom(rec, DefaultCSRFCookieName)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, c.Value, rec.Body.String(), "token exposed to templates")
}

func TestCSRF_GetReusesExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "existing"})
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Nil(t, cookieFrom(rec, DefaultCSRFCookieName))
	assert.Equal(t, "existing", rec.Body.String())
}

func TestCSRF_PostValidation(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		form   string
		want   int
	}{
		{"no cookie", "", "", "abc", http.StatusForbidden},
		{"form token matches", "abc", "", "abc", http.StatusOK},
		{"form token differs", "abc", "", "abd", http.StatusForbidden},
		{"header token matches", "abc", "abc", "", http.StatusOK},
		{"header wins over form", "abc", "zzz", "abc", http.StatusForbidden},
		{"missing token", "abc", "", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := url.Values{}
			if tt.form != "" {
				body.Set(DefaultCSRFCookieName, tt.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/cart/clear", strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(DefaultCSRFHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			csrfHandler().ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCSRF_JSONBodyNeedsHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"csrf_token":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
