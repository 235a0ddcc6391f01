package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/http/validation"
	"github.com/target/parapharmacie-storefront/internal/service"
)

const (
	msgAddedToCart    = "Produit ajouté au panier."
	msgCartUpdated    = "Panier mis à jour."
	msgItemRemoved    = "Article retiré du panier."
	msgCartCleared    = "Panier vidé."
	msgCartValid      = "Votre panier est prêt pour la commande."
	msgCartInvalid    = "Certains articles ne sont plus disponibles. Le panier a été actualisé."
	msgOrderPlaced    = "Commande passée avec succès !"
	msgUnknownItem    = "Article introuvable dans le panier."
	msgBadQuantity    = "La quantité doit être au moins 1."
	msgUnknownProduct = "Produit invalide."
	msgOutOfStock     = "Ce produit est en rupture de stock."
)

// msgOverStock tells the shopper how many units are left.
func msgOverStock(stock int) string {
	return "Stock insuffisant : " + strconv.Itoa(stock) + " unité(s) disponible(s)."
}

// Cart renders the cart with the checkout form.
// GET /cart.
func (h *UIHandlers) Cart(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	cart, err := h.Carts.Load(r.Context(), sess)
	b := h.pageData(r, PageMeta{Title: "Mon panier", CurrentPage: PageCart})
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		b.WithError(h.notifyError(r, err, "cart"))
	}
	h.render(w, r, http.StatusOK, cartPage(b, cart, map[string]string{}).Build())
}

func cartPage(b *TemplateDataBuilder, cart model.Cart, form map[string]string) *TemplateDataBuilder {
	return b.
		With("Cart", cart).
		With("CartCount", cart.ItemCount).
		With("Form", form)
}

// CartAdd adds a product to the cart and returns to the page the shopper came from.
// POST /cart/items.
func (h *UIHandlers) CartAdd(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/products")
	productID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("product_id")), 10, 64)
	if err != nil || productID <= 0 {
		AddNotice(r.Context(), msgUnknownProduct, NoticeError)
		h.redirect(w, r, back)
		return
	}
	quantity, ok := formInt(r, "quantity")
	if !ok {
		quantity = 1
	}
	if quantity < 1 {
		AddNotice(r.Context(), msgBadQuantity, NoticeError)
		h.redirect(w, r, back)
		return
	}

	sess := GetSessionFromContext(r.Context())
	product, err := h.Catalog.Product(r.Context(), productID)
	if err != nil {
		if isNotFound(err) {
			stateFrom(r.Context()).takeNotices()
			AddNotice(r.Context(), msgUnknownProduct, NoticeError)
			h.redirect(w, r, back)
			return
		}
		h.actionFailed(w, r, err, "cart_add", back)
		return
	}
	if !product.Purchasable() {
		AddNotice(r.Context(), msgOutOfStock, NoticeError)
		h.redirect(w, r, back)
		return
	}
	cart, err := h.Carts.Snapshot(r.Context(), sess)
	if err != nil {
		h.actionFailed(w, r, err, "cart_add", back)
		return
	}
	if inCart := quantityInCart(cart, productID); inCart+quantity > product.StockQuantity {
		AddNotice(r.Context(), msgOverStock(max(product.StockQuantity-inCart, 0)), NoticeError)
		h.redirect(w, r, back)
		return
	}

	if _, err := h.Carts.AddItem(r.Context(), sess, productID, quantity); err != nil {
		h.actionFailed(w, r, err, "cart_add", back)
		return
	}
	AddNotice(r.Context(), msgAddedToCart, NoticeSuccess)
	h.redirect(w, r, back)
}

// CartUpdate changes the quantity of a line. Quantities below one and above
// the product stock are refused here; removal has its own route.
// POST /cart/items/{id}.
func (h *UIHandlers) CartUpdate(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		AddNotice(r.Context(), msgUnknownItem, NoticeError)
		h.redirect(w, r, PathCart)
		return
	}
	quantity, ok := formInt(r, "quantity")
	if !ok || quantity < 1 {
		AddNotice(r.Context(), msgBadQuantity, NoticeError)
		h.redirect(w, r, PathCart)
		return
	}

	sess := GetSessionFromContext(r.Context())
	cart, err := h.Carts.Snapshot(r.Context(), sess)
	if err != nil {
		h.actionFailed(w, r, err, "cart_update", PathCart)
		return
	}
	item, ok := cart.Item(itemID)
	if !ok {
		AddNotice(r.Context(), msgUnknownItem, NoticeError)
		h.redirect(w, r, PathCart)
		return
	}
	// Lowering a line that already exceeds a shrunken stock is still allowed.
	if quantity > item.Product.StockQuantity && quantity > item.Quantity {
		AddNotice(r.Context(), msgOverStock(item.Product.StockQuantity), NoticeError)
		h.redirect(w, r, PathCart)
		return
	}

	if _, err := h.Carts.UpdateItem(r.Context(), sess, itemID, quantity); err != nil {
		h.actionFailed(w, r, err, "cart_update", PathCart)
		return
	}
	AddNotice(r.Context(), msgCartUpdated, NoticeSuccess)
	h.redirect(w, r, PathCart)
}

// CartRemove deletes a line.
// POST /cart/items/{id}/delete.
func (h *UIHandlers) CartRemove(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		AddNotice(r.Context(), msgUnknownItem, NoticeError)
		h.redirect(w, r, PathCart)
		return
	}
	if _, err := h.Carts.RemoveItem(r.Context(), GetSessionFromContext(r.Context()), itemID); err != nil {
		h.actionFailed(w, r, err, "cart_remove", PathCart)
		return
	}
	AddNotice(r.Context(), msgItemRemoved, NoticeSuccess)
	h.redirect(w, r, PathCart)
}

// CartClear empties the cart.
// POST /cart/clear.
func (h *UIHandlers) CartClear(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Carts.Clear(r.Context(), GetSessionFromContext(r.Context())); err != nil {
		h.actionFailed(w, r, err, "cart_clear", PathCart)
		return
	}
	AddNotice(r.Context(), msgCartCleared, NoticeSuccess)
	h.redirect(w, r, PathCart)
}

// CartValidate asks the backend whether every line can still be fulfilled.
// POST /cart/validate.
func (h *UIHandlers) CartValidate(w http.ResponseWriter, r *http.Request) {
	v, err := h.Carts.Validate(r.Context(), GetSessionFromContext(r.Context()))
	if err != nil {
		h.actionFailed(w, r, err, "cart_validate", PathCart)
		return
	}
	if v.Valid {
		AddNotice(r.Context(), msgCartValid, NoticeSuccess)
	} else {
		msg := v.Message
		if msg == "" {
			msg = msgCartInvalid
		}
		AddNotice(r.Context(), msg, NoticeError)
	}
	h.redirect(w, r, PathCart)
}

// Checkout places an order for every cart line.
// POST /checkout.
func (h *UIHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	form := map[string]string{
		"shipping_address": strings.TrimSpace(r.PostFormValue("shipping_address")),
		"phone":            strings.TrimSpace(r.PostFormValue("phone")),
		"discount_code":    strings.TrimSpace(r.PostFormValue("discount_code")),
		"notes":            strings.TrimSpace(r.PostFormValue("notes")),
	}

	cart, err := h.Carts.Snapshot(r.Context(), sess)
	if err != nil {
		h.actionFailed(w, r, err, "checkout_cart", PathCart)
		return
	}
	itemIDs := selectedItems(r, cart)

	if errs := validation.Checkout(form["shipping_address"], form["phone"], form["notes"], len(itemIDs)); len(errs) > 0 {
		b := h.pageData(r, PageMeta{Title: "Mon panier", CurrentPage: PageCart}).
			WithFieldErrors(errs).
			WithError(errMsgFixBelow)
		h.render(w, r, formStatus(r, http.StatusUnprocessableEntity), cartPage(b, cart, form).Build())
		return
	}

	order, err := h.Orders.Checkout(r.Context(), sess, service.CheckoutInput{
		ShippingAddress: form["shipping_address"],
		Phone:           form["phone"],
		ItemIDs:         itemIDs,
		DiscountCode:    form["discount_code"],
		Notes:           form["notes"],
	})
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		msg := h.notifyError(r, err, "checkout")
		b := h.pageData(r, PageMeta{Title: "Mon panier", CurrentPage: PageCart}).
			WithFieldErrors(fieldErrorFrom(err)).
			WithError(msg)
		h.render(w, r, formStatus(r, http.StatusUnprocessableEntity), cartPage(b, cart, form).Build())
		return
	}

	AddNotice(r.Context(), msgOrderPlaced, NoticeSuccess)
	h.redirect(w, r, PathOrders+"/"+strconv.FormatInt(order.ID, 10))
}

// quantityInCart returns how many units of productID the cart already holds.
func quantityInCart(cart model.Cart, productID int64) int {
	n := 0
	for _, it := range cart.Items {
		if it.Product.ID == productID {
			n += it.Quantity
		}
	}
	return n
}

// selectedItems returns the posted item_ids that belong to the cart, or every line when none were posted.
func selectedItems(r *http.Request, cart model.Cart) []int64 {
	posted := r.PostForm["item_ids"]
	if len(posted) == 0 {
		return cart.ItemIDs()
	}
	ids := make([]int64, 0, len(posted))
	for _, raw := range posted {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		if _, ok := cart.Item(id); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// backTo returns the safe same-origin page the form was posted from, or fallback.
func backTo(r *http.Request, fallback string) string {
	if p := safeRedirectPath(r.PostFormValue("back")); p != "" {
		return p
	}
	if p := safeRedirectFromURL(r.Header.Get("Referer")); p != "" {
		return p
	}
	return fallback
}
