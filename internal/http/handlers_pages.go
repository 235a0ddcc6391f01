package httpx

import (
	"net/http"
	"strings"

	"github.com/target/parapharmacie-storefront/internal/http/validation"
)

const msgContactSent = "Merci ! Votre message a bien été envoyé."

// About renders the store presentation page.
// GET /about.
func (h *UIHandlers) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK,
		h.pageData(r, PageMeta{Title: "À propos", CurrentPage: PageAbout}).Build())
}

// Contact renders the contact page.
// GET /contact.
func (h *UIHandlers) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, map[string]string{}, nil)
}

// ContactSubmit validates the contact form and acknowledges it with a toast.
// Messages are logged for the support mailbox relay; the backend has no contact endpoint.
// POST /contact.
func (h *UIHandlers) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"name":    strings.TrimSpace(r.PostFormValue("name")),
		"email":   strings.TrimSpace(r.PostFormValue("email")),
		"subject": strings.TrimSpace(r.PostFormValue("subject")),
		"message": strings.TrimSpace(r.PostFormValue("message")),
	}
	if errs := validation.Contact(form["name"], form["email"], form["subject"], form["message"]); len(errs) > 0 {
		h.renderContact(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	h.logger().InfoContext(r.Context(), "contact message received",
		"email", form["email"], "subject", form["subject"], "request_id", RequestIDFrom(r.Context()))
	AddNotice(r.Context(), msgContactSent, NoticeSuccess)
	h.redirect(w, r, "/contact")
}

func (h *UIHandlers) renderContact(w http.ResponseWriter, r *http.Request, status int, form, errs map[string]string) {
	b := h.pageData(r, PageMeta{Title: "Contact", PageTitle: "Contactez-nous", CurrentPage: PageContact}).
		With("Form", form).
		WithFieldErrors(errs)
	if len(errs) > 0 {
		b.WithError(errMsgFixBelow)
	}
	h.render(w, r, formStatus(r, status), b.Build())
}
