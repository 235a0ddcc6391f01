package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/target/parapharmacie-storefront/internal/http/ui/viewmodel"
)

const (
	flashCookieName = "flash"
	maxFlashNotices = 3
)

// readFlash returns notices carried over a redirect and clears the cookie.
func readFlash(w http.ResponseWriter, r *http.Request, cookies CookieConfig) []viewmodel.Notice {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	cookies.clear(w, r, flashCookieName)

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var notices []viewmodel.Notice
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil
	}
	if len(notices) > maxFlashNotices {
		notices = notices[:maxFlashNotices]
	}
	return notices
}

// writeFlash stores pending notices so the page after a redirect can show them.
func writeFlash(w http.ResponseWriter, r *http.Request, cookies CookieConfig, notices []viewmodel.Notice) {
	if len(notices) == 0 {
		return
	}
	if len(notices) > maxFlashNotices {
		notices = notices[len(notices)-maxFlashNotices:]
	}
	raw, err := json.Marshal(notices)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		Domain:   cookies.Domain,
		HttpOnly: true,
		Secure:   cookies.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// triggerToast sends the latest notice as an htmx showToast event.
func triggerToast(w http.ResponseWriter, notices []viewmodel.Notice) {
	if len(notices) == 0 {
		return
	}
	SetHXTrigger(w, "showToast", notices[len(notices)-1])
}
