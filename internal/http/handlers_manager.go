package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/http/validation"
)

const (
	pathManager = "/manager"

	msgStatusUpdated  = "Statut de la commande mis à jour."
	msgProductCreated = "Produit créé."
	msgProductUpdated = "Produit mis à jour."
	msgStockUpdated   = "Stock mis à jour."
)

// Manager renders the manager console.
// GET /manager.
func (h *UIHandlers) Manager(w http.ResponseWriter, r *http.Request) {
	b := h.pageData(r, PageMeta{Title: "Espace gestionnaire", CurrentPage: PageManager}).
		With("Statuses", model.OrderStatuses()).
		With("LowStockThreshold", model.LowStockThreshold)

	dash, err := h.Backoffice.ManagerDashboard(r.Context(), GetSessionFromContext(r.Context()))
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		b.WithError(h.notifyError(r, err, "manager_dashboard"))
	} else {
		b.With("Dashboard", dash)
	}
	h.render(w, r, http.StatusOK, b.Build())
}

// ManagerOrderStatus moves an order to a new status.
// POST /manager/orders/{id}/status.
func (h *UIHandlers) ManagerOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.setOrderStatus(w, r, pathManager)
}

func (h *UIHandlers) setOrderStatus(w http.ResponseWriter, r *http.Request, back string) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	raw := r.PostFormValue("status")
	if errs := validation.OrderStatus(raw); len(errs) > 0 {
		AddNotice(r.Context(), errs["status"], NoticeError)
		h.redirect(w, r, back)
		return
	}
	status, _ := model.ParseOrderStatus(raw)
	if _, err := h.Backoffice.SetOrderStatus(r.Context(), GetSessionFromContext(r.Context()), id, status); err != nil {
		h.actionFailed(w, r, err, "order_status", back)
		return
	}
	AddNotice(r.Context(), msgStatusUpdated, NoticeSuccess)
	h.redirect(w, r, back)
}

// ManagerProductNew renders an empty product form.
// GET /manager/products/new.
func (h *UIHandlers) ManagerProductNew(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, productFormView{
		Mode: FormModeCreate,
		Form: map[string]string{"stock": "0", "available": "on"},
	})
}

// ManagerProductEdit renders the product form prefilled from the catalog.
// GET /manager/products/{id}/edit.
func (h *UIHandlers) ManagerProductEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	p, err := h.Catalog.Product(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			stateFrom(r.Context()).takeNotices()
			h.NotFound(w, r)
			return
		}
		h.actionFailed(w, r, err, "product_edit", pathManager)
		return
	}
	h.renderProductForm(w, r, http.StatusOK, productFormView{
		Mode:      FormModeEdit,
		ProductID: p.ID,
		Form:      productFormValues(p),
	})
}

// ManagerProductCreate creates a product.
// POST /manager/products.
func (h *UIHandlers) ManagerProductCreate(w http.ResponseWriter, r *http.Request) {
	form, in, errs := readProductForm(r)
	if len(errs) > 0 {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity,
			productFormView{Mode: FormModeCreate, Form: form, Errors: errs, Message: errMsgFixBelow})
		return
	}
	if _, err := h.Backoffice.CreateProduct(r.Context(), GetSessionFromContext(r.Context()), in); err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		msg := h.notifyError(r, err, "product_create")
		h.renderProductForm(w, r, http.StatusUnprocessableEntity,
			productFormView{Mode: FormModeCreate, Form: form, Errors: fieldErrorFrom(err), Message: msg})
		return
	}
	AddNotice(r.Context(), msgProductCreated, NoticeSuccess)
	h.redirect(w, r, pathManager)
}

// ManagerProductUpdate edits a product.
// POST /manager/products/{id}.
func (h *UIHandlers) ManagerProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	form, in, errs := readProductForm(r)
	view := productFormView{Mode: FormModeEdit, ProductID: id, Form: form}
	if len(errs) > 0 {
		view.Errors, view.Message = errs, errMsgFixBelow
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	if _, err := h.Backoffice.UpdateProduct(r.Context(), GetSessionFromContext(r.Context()), id, in); err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		view.Errors, view.Message = fieldErrorFrom(err), h.notifyError(r, err, "product_update")
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}
	AddNotice(r.Context(), msgProductUpdated, NoticeSuccess)
	h.redirect(w, r, pathManager)
}

// ManagerProductStock sets a product stock level.
// POST /manager/products/{id}/stock.
func (h *UIHandlers) ManagerProductStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	raw := r.PostFormValue("stock")
	if errs := validation.New().Validate("stock", raw, validation.IntMin("Le stock", 0)).Errors(); len(errs) > 0 {
		AddNotice(r.Context(), errs["stock"], NoticeError)
		h.redirect(w, r, pathManager)
		return
	}
	stock, _ := strconv.Atoi(strings.TrimSpace(raw))
	if _, err := h.Backoffice.UpdateStock(r.Context(), GetSessionFromContext(r.Context()), id, stock); err != nil {
		h.actionFailed(w, r, err, "product_stock", pathManager)
		return
	}
	AddNotice(r.Context(), msgStockUpdated, NoticeSuccess)
	h.redirect(w, r, pathManager)
}

// productFormView is the state of the create/edit product form.
type productFormView struct {
	Mode      FormMode
	ProductID int64
	Form      map[string]string
	Errors    map[string]string
	Message   string
}

func (h *UIHandlers) renderProductForm(w http.ResponseWriter, r *http.Request, status int, v productFormView) {
	title := "Nouveau produit"
	action := pathManager + "/products"
	if v.Mode == FormModeEdit {
		title = "Modifier le produit"
		action = pathManager + "/products/" + strconv.FormatInt(v.ProductID, 10)
	}
	b := h.pageData(r, PageMeta{Title: title, CurrentPage: PageProductForm}).
		With("Mode", v.Mode).
		With("Action", action).
		With("Form", v.Form).
		With("Categories", model.Categories()).
		WithFieldErrors(v.Errors)
	if v.Message != "" {
		b.WithError(v.Message)
	}
	h.render(w, r, formStatus(r, status), b.Build())
}

// readProductForm returns the echoed form values, the parsed input and field errors.
func readProductForm(r *http.Request) (map[string]string, model.ProductInput, map[string]string) {
	form := map[string]string{
		"name":        strings.TrimSpace(r.PostFormValue("name")),
		"description": strings.TrimSpace(r.PostFormValue("description")),
		"price":       strings.TrimSpace(r.PostFormValue("price")),
		"category":    strings.TrimSpace(r.PostFormValue("category")),
		"image_url":   strings.TrimSpace(r.PostFormValue("image_url")),
		"stock":       strings.TrimSpace(r.PostFormValue("stock")),
		"available":   r.PostFormValue("available"),
	}
	errs := validation.Product(form["name"], form["category"], form["price"], form["stock"], form["image_url"])
	if len(errs) > 0 {
		return form, model.ProductInput{}, errs
	}

	price, _ := validation.ParseDecimal(form["price"])
	category, _ := model.ParseCategory(form["category"])
	stock, _ := strconv.Atoi(form["stock"])
	return form, model.ProductInput{
		Name:          form["name"],
		Description:   form["description"],
		Price:         price,
		Category:      category,
		ImageURL:      form["image_url"],
		StockQuantity: stock,
		Available:     form["available"] != "",
	}, nil
}

func productFormValues(p model.Product) map[string]string {
	available := ""
	if p.Available {
		available = "on"
	}
	return map[string]string{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.StringFixed(2),
		"category":    string(p.Category),
		"image_url":   p.ImageURL,
		"stock":       strconv.Itoa(p.StockQuantity),
		"available":   available,
	}
}
