package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/parapharmacie-storefront/internal/http/ui/viewmodel"
)

func TestFlash_RoundTrip(t *testing.T) {
	notices := []viewmodel.Notice{
		{Message: "un", Type: NoticeInfo},
		{Message: "deux", Type: NoticeSuccess},
		{Message: "trois", Type: NoticeError},
		{Message: "quatre", Type: NoticeError},
	}
	rec := httptest.NewRecorder()
	writeFlash(rec, httptest.NewRequest(http.MethodPost, "/cart/clear", nil), CookieConfig{}, notices)

	c := cookieFrom(rec, flashCookieName)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(c)
	next := httptest.NewRecorder()
	got := readFlash(next, req, CookieConfig{})

	assert.Equal(t, notices[1:], got, "only the latest notices survive")
	cleared := cookieFrom(next, flashCookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestFlash_GarbageIsIgnored(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%not-base64"})
	assert.Nil(t, readFlash(httptest.NewRecorder(), req, CookieConfig{}))
}

func TestFlash_NothingToWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	writeFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil), CookieConfig{}, nil)
	assert.Empty(t, rec.Result().Cookies())
}

func TestTriggerToast_UsesLatestNotice(t *testing.T) {
	rec := httptest.NewRecorder()
	triggerToast(rec, []viewmodel.Notice{{Message: "a", Type: NoticeInfo}, {Message: "b", Type: NoticeError}})
	assert.JSONEq(t, `{"showToast":{"message":"b","type":"error"}}`, rec.Header().Get("Hx-Trigger"))
}
