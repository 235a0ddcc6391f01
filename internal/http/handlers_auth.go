package httpx

import (
	"net/http"
	"strings"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/http/validation"
)

const (
	msgWelcome       = "Connexion réussie. Bienvenue !"
	msgRegistered    = "Inscription réussie. Bienvenue !"
	msgRegisteredOff = "Inscription réussie. Vous pouvez maintenant vous connecter."
	msgLoggedOut     = "Vous êtes déconnecté."
	msgBadLogin      = "Email ou mot de passe incorrect."
)

// Login renders the sign-in form. Signed-in visitors go straight to their landing page.
// GET /login?redirect_uri=<optional_redirect>.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if sess := GetSessionFromContext(r.Context()); sess != nil {
		h.redirect(w, r, afterLogin(r.URL.Query().Get("redirect_uri"), sess.Role))
		return
	}
	h.renderLogin(w, r, http.StatusOK, map[string]string{"redirect_uri": r.URL.Query().Get("redirect_uri")}, nil, "")
}

// LoginSubmit authenticates the shopper and lands them on the requested page or their role home.
// POST /login.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"email":        strings.TrimSpace(r.PostFormValue("email")),
		"redirect_uri": r.PostFormValue("redirect_uri"),
	}
	password := r.PostFormValue("password")
	if errs := validation.Login(form["email"], password); len(errs) > 0 {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form, errs, errMsgFixBelow)
		return
	}

	sess, err := h.Sessions.Login(r.Context(), form["email"], password)
	if err != nil {
		msg := h.notifyError(r, err, "login")
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.Status == http.StatusUnauthorized && apiErr.Message == "" {
			msg = msgBadLogin
		}
		stateFrom(r.Context()).takeNotices()
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form, nil, msg)
		return
	}

	h.Cookies.setSession(w, r, sess)
	AddNotice(r.Context(), msgWelcome, NoticeSuccess)
	h.redirect(w, r, afterLogin(form["redirect_uri"], sess.Role))
}

func (h *UIHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string, msg string) {
	b := h.pageData(r, PageMeta{Title: "Connexion", CurrentPage: PageLogin}).
		With("Form", form).
		WithFieldErrors(errs)
	if msg != "" {
		b.WithError(msg)
	}
	h.render(w, r, formStatus(r, status), b.Build())
}

// Register renders the sign-up form.
// GET /register.
func (h *UIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	if sess := GetSessionFromContext(r.Context()); sess != nil {
		h.redirect(w, r, domainauth.RedirectTargetFor(sess.Role))
		return
	}
	h.renderRegister(w, r, http.StatusOK, map[string]string{}, nil, "")
}

// RegisterSubmit creates the account. When the backend also returns a token the
// shopper is signed in immediately, otherwise they are sent to the sign-in form.
// POST /register.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"name":    strings.TrimSpace(r.PostFormValue("name")),
		"email":   strings.TrimSpace(r.PostFormValue("email")),
		"phone":   strings.TrimSpace(r.PostFormValue("phone")),
		"address": strings.TrimSpace(r.PostFormValue("address")),
	}
	password := r.PostFormValue("password")
	errs := validation.Register(form["name"], form["email"], form["phone"], form["address"],
		password, r.PostFormValue("confirm_password"))
	if len(errs) > 0 {
		h.renderRegister(w, r, http.StatusUnprocessableEntity, form, errs, errMsgFixBelow)
		return
	}

	sess, err := h.Sessions.Register(r.Context(), model.RegisterRequest{
		Name:     form["name"],
		Email:    form["email"],
		Password: password,
		Phone:    form["phone"],
		Address:  form["address"],
	})
	if err != nil {
		msg := h.notifyError(r, err, "register")
		stateFrom(r.Context()).takeNotices()
		h.renderRegister(w, r, http.StatusUnprocessableEntity, form,
			fieldErrorFrom(err), msg)
		return
	}
	if sess == nil {
		AddNotice(r.Context(), msgRegisteredOff, NoticeSuccess)
		h.redirect(w, r, PathLogin)
		return
	}

	h.Cookies.setSession(w, r, sess)
	AddNotice(r.Context(), msgRegistered, NoticeSuccess)
	h.redirect(w, r, domainauth.RedirectTargetFor(sess.Role))
}

func (h *UIHandlers) renderRegister(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string, msg string) {
	b := h.pageData(r, PageMeta{Title: "Inscription", CurrentPage: PageRegister}).
		With("Form", form).
		WithFieldErrors(errs)
	if msg != "" {
		b.WithError(msg)
	}
	h.render(w, r, formStatus(r, status), b.Build())
}

// Logout ends the session locally even when the backend cannot be reached.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFrom(r.Context()); id != "" {
		if err := h.Sessions.Logout(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.clear(w, r, h.Cookies.sessionName())
	// Any failure notice raised during logout is moot once the session is gone.
	stateFrom(r.Context()).takeNotices()
	AddNotice(r.Context(), msgLoggedOut, NoticeInfo)
	h.redirect(w, r, PathHome)
}

// SessionStatus reports the restored identity and cart badge count for client scripts.
// GET /session/status.
func (h *UIHandlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r.Context())
	body := map[string]any{"authenticated": false, "loading": st.loading(), "cart_count": 0}
	if sess := st.session(); sess != nil {
		if cart, err := h.Carts.Snapshot(r.Context(), sess); err == nil {
			body["cart_count"] = cart.ItemCount
		}
		body["authenticated"] = true
		body["name"] = sess.Name
		body["email"] = sess.Email
		body["role"] = string(sess.Role)
		body["expires_at"] = sess.ExpiresAt
	}
	WriteJSON(w, http.StatusOK, body)
}

// afterLogin picks the landing page: a safe requested path, else the role home.
func afterLogin(requested string, role domainauth.Role) string {
	if p := safeRedirectPath(requested); p != "" && p != PathLogin && !strings.HasPrefix(p, PathLogin+"?") {
		return p
	}
	return domainauth.RedirectTargetFor(role)
}

// formStatus keeps htmx swaps working: htmx ignores 4xx bodies by default.
func formStatus(r *http.Request, status int) int {
	if IsHTMX(r) {
		return http.StatusOK
	}
	return status
}

// fieldErrorFrom lifts a field-scoped validation error into the form error map.
func fieldErrorFrom(err error) map[string]string {
	field := apperrors.GetField(err)
	if field == "" {
		return nil
	}
	return map[string]string{field: errorMessage(err)}
}
