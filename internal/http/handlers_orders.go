package httpx

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/service"
)

const (
	msgOrderCancelled = "Commande annulée."
	msgNotCancellable = "Cette commande ne peut plus être annulée."
)

// OrderList renders the shopper's order history with a summary.
// GET /orders?page=<n>.
func (h *UIHandlers) OrderList(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	page := max(parseIntQuery(r, "page", 1), 1)

	var (
		listing model.OrderPage
		stats   model.OrderStats
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		listing, err = h.Orders.MyOrders(ctx, sess, page-1, service.DefaultOrderPageSize)
		return err
	})
	g.Go(func() error {
		s, err := h.Orders.Stats(ctx, sess)
		if err != nil {
			h.logger().DebugContext(ctx, "order stats unavailable", "error", err)
			return nil
		}
		stats = s
		return nil
	})

	b := h.pageData(r, PageMeta{Title: "Mes commandes", CurrentPage: PageOrders})
	if err := g.Wait(); err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		b.WithError(h.notifyError(r, err, "orders"))
	}
	h.render(w, r, http.StatusOK, b.
		With("Orders", listing.Orders).
		With("Stats", stats).
		With("Page", page).
		With("TotalPages", listing.TotalPages).
		With("HasPrev", page > 1).
		With("HasNext", page < listing.TotalPages).
		Build())
}

// OrderDetail renders one order.
// GET /orders/{id}.
func (h *UIHandlers) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	order, err := h.Orders.Order(r.Context(), GetSessionFromContext(r.Context()), id)
	if err != nil {
		if isNotFound(err) {
			stateFrom(r.Context()).takeNotices()
			h.NotFound(w, r)
			return
		}
		h.actionFailed(w, r, err, "order", PathOrders)
		return
	}
	data := h.pageData(r, PageMeta{
		Title:       "Commande n°" + strconv.FormatInt(order.ID, 10),
		CurrentPage: PageOrder,
	}).With("Order", order).Build()
	h.render(w, r, http.StatusOK, data)
}

// OrderCancel cancels a pending order.
// POST /orders/{id}/cancel.
func (h *UIHandlers) OrderCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	back := PathOrders + "/" + strconv.FormatInt(id, 10)
	sess := GetSessionFromContext(r.Context())

	current, err := h.Orders.Order(r.Context(), sess, id)
	if err != nil {
		h.actionFailed(w, r, err, "order_cancel", PathOrders)
		return
	}
	if !current.Status.Cancellable() {
		AddNotice(r.Context(), msgNotCancellable, NoticeError)
		h.redirect(w, r, back)
		return
	}
	if _, err := h.Orders.Cancel(r.Context(), sess, id); err != nil {
		h.actionFailed(w, r, err, "order_cancel", back)
		return
	}
	AddNotice(r.Context(), msgOrderCancelled, NoticeSuccess)
	h.redirect(w, r, back)
}
