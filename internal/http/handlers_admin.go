package httpx

import (
	"net/http"
	"strconv"
	"strings"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/http/validation"
)

const (
	pathAdmin = "/admin"

	msgUserCreated    = "Utilisateur créé."
	msgUserDeleted    = "Utilisateur supprimé."
	msgRoleUpdated    = "Rôle mis à jour."
	msgUserEnabled    = "Compte activé."
	msgUserDisabled   = "Compte désactivé."
	msgProductDeleted = "Produit supprimé."
)

// Admin renders the admin console. ?status= filters the order table.
// GET /admin.
func (h *UIHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	var status model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		if s, ok := model.ParseOrderStatus(raw); ok {
			status = s
		} else {
			AddNotice(r.Context(), "Statut de commande invalide.", NoticeError)
		}
	}
	h.renderAdmin(w, r, http.StatusOK, status, map[string]string{"role": domainauth.RoleUser.Wire()}, nil, "")
}

func (h *UIHandlers) renderAdmin(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	filter model.OrderStatus,
	form, errs map[string]string,
	msg string,
) {
	b := h.pageData(r, PageMeta{Title: "Administration", CurrentPage: PageAdmin}).
		With("Statuses", model.OrderStatuses()).
		With("Roles", []domainauth.Role{domainauth.RoleUser, domainauth.RoleManager, domainauth.RoleAdmin}).
		With("StatusFilter", string(filter)).
		With("Form", form).
		WithFieldErrors(errs)
	if msg != "" {
		b.WithError(msg)
	}

	dash, err := h.Backoffice.AdminDashboard(r.Context(), GetSessionFromContext(r.Context()), filter)
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		b.WithError(h.notifyError(r, err, "admin_dashboard"))
	} else {
		b.With("Dashboard", dash)
	}
	h.render(w, r, formStatus(r, status), b.Build())
}

// AdminUserCreate adds an account.
// POST /admin/users.
func (h *UIHandlers) AdminUserCreate(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"name":  strings.TrimSpace(r.PostFormValue("name")),
		"email": strings.TrimSpace(r.PostFormValue("email")),
		"role":  strings.TrimSpace(r.PostFormValue("role")),
	}
	password := r.PostFormValue("password")
	if errs := validation.NewUser(form["name"], form["email"], password, form["role"]); len(errs) > 0 {
		h.renderAdmin(w, r, http.StatusUnprocessableEntity, "", form, errs, errMsgFixBelow)
		return
	}
	_, err := h.Backoffice.CreateUser(r.Context(), GetSessionFromContext(r.Context()), model.CreateUserRequest{
		Name:     form["name"],
		Email:    form["email"],
		Password: password,
		Role:     string(domainauth.ParseRole(form["role"])),
	})
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		msg := h.notifyError(r, err, "user_create")
		h.renderAdmin(w, r, http.StatusUnprocessableEntity, "", form, fieldErrorFrom(err), msg)
		return
	}
	AddNotice(r.Context(), msgUserCreated, NoticeSuccess)
	h.redirect(w, r, pathAdmin)
}

// AdminUserRole changes an account role.
// POST /admin/users/{id}/role.
func (h *UIHandlers) AdminUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	raw := r.PostFormValue("role")
	if errs := validation.UserRole(raw); len(errs) > 0 {
		AddNotice(r.Context(), errs["role"], NoticeError)
		h.redirect(w, r, pathAdmin)
		return
	}
	role := domainauth.ParseRole(raw)
	if _, err := h.Backoffice.SetUserRole(r.Context(), GetSessionFromContext(r.Context()), id, role); err != nil {
		h.actionFailed(w, r, err, "user_role", pathAdmin)
		return
	}
	AddNotice(r.Context(), msgRoleUpdated, NoticeSuccess)
	h.redirect(w, r, pathAdmin)
}

// AdminUserEnabled enables or disables an account.
// POST /admin/users/{id}/enabled.
func (h *UIHandlers) AdminUserEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	enabled, err := strconv.ParseBool(r.PostFormValue("enabled"))
	if err != nil {
		AddNotice(r.Context(), "Valeur invalide.", NoticeError)
		h.redirect(w, r, pathAdmin)
		return
	}
	if _, err := h.Backoffice.SetUserEnabled(r.Context(), GetSessionFromContext(r.Context()), id, enabled); err != nil {
		h.actionFailed(w, r, err, "user_enabled", pathAdmin)
		return
	}
	msg := msgUserDisabled
	if enabled {
		msg = msgUserEnabled
	}
	AddNotice(r.Context(), msg, NoticeSuccess)
	h.redirect(w, r, pathAdmin)
}

// AdminUserDelete removes an account.
// POST /admin/users/{id}/delete.
func (h *UIHandlers) AdminUserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.Backoffice.DeleteUser(r.Context(), GetSessionFromContext(r.Context()), id); err != nil {
		h.actionFailed(w, r, err, "user_delete", pathAdmin)
		return
	}
	AddNotice(r.Context(), msgUserDeleted, NoticeSuccess)
	h.redirect(w, r, pathAdmin)
}

// AdminProductDelete removes a product from the catalog.
// POST /admin/products/{id}/delete.
func (h *UIHandlers) AdminProductDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.Backoffice.DeleteProduct(r.Context(), GetSessionFromContext(r.Context()), id); err != nil {
		h.actionFailed(w, r, err, "product_delete", pathAdmin)
		return
	}
	AddNotice(r.Context(), msgProductDeleted, NoticeSuccess)
	h.redirect(w, r, pathAdmin)
}

// AdminOrderStatus moves an order to a new status from the admin console.
// POST /admin/orders/{id}/status.
func (h *UIHandlers) AdminOrderStatus(w http.ResponseWriter, r *http.Request) {
	back := pathAdmin
	if filter := safeRedirectPath(r.PostFormValue("back")); strings.HasPrefix(filter, pathAdmin) {
		back = filter
	}
	h.setOrderStatus(w, r, back)
}
