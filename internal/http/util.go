package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// pathID parses a positive int64 path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formInt parses an integer form field, reporting false when absent or malformed.
func formInt(r *http.Request, key string) (int, bool) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseIntQuery returns the integer value of a query param or a default.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute or scheme-relative URL. Returns "" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return ""
	}
	return candidate
}

// loginURL builds the sign-in location that returns the shopper to next afterwards.
func loginURL(next string) string {
	next = safeRedirectPath(next)
	if next == "" || next == "/" {
		return PathLogin
	}
	return PathLogin + "?redirect_uri=" + url.QueryEscape(next)
}

// redirectPathForRequest picks the location to come back to after sign-in.
// htmx requests report the page the shopper was looking at, not the fragment URL.
func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
	}
	if r.Method != http.MethodGet {
		if ref := safeRedirectFromURL(r.Header.Get("Referer")); ref != "" {
			return ref
		}
	}
	return safeRedirectPath(r.URL.RequestURI())
}

func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Host != "" && !u.IsAbs() {
		return ""
	}
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}
	return safeRedirectPath(raw)
}
