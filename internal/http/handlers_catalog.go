package httpx

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/target/parapharmacie-storefront/internal/apiclient"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/service"
)

const (
	defaultFeaturedProducts = 8
	maxDetailQuantity       = 99
)

// Home renders the landing page with featured products and the category shortcuts.
// GET /.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	n := h.FeaturedProducts
	if n <= 0 {
		n = defaultFeaturedProducts
	}

	var (
		featured   []model.Product
		categories []model.Category
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		featured, err = h.Catalog.Featured(ctx, n)
		return err
	})
	g.Go(func() error {
		cats, err := h.Catalog.Categories(ctx)
		if err != nil {
			h.logger().DebugContext(ctx, "categories unavailable, using defaults", "error", err)
			cats = model.Categories()
		}
		categories = cats
		return nil
	})

	b := h.pageData(r, PageMeta{Title: "Accueil", PageTitle: "Votre parapharmacie en ligne", CurrentPage: PageHome})
	if err := g.Wait(); err != nil {
		b.WithError(h.notifyError(r, err, "home"))
	}
	h.render(w, r, http.StatusOK, b.
		With("Featured", featured).
		With("Categories", categories).
		Build())
}

// Products renders the catalog listing, filtered by ?category= or ?q=.
// GET /products.
func (h *UIHandlers) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("q"))
	var category model.Category
	if raw := q.Get("category"); raw != "" && search == "" {
		c, ok := model.ParseCategory(raw)
		if !ok {
			AddNotice(r.Context(), "Catégorie inconnue.", NoticeError)
			h.redirect(w, r, "/products")
			return
		}
		category = c
	}

	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		categories = model.Categories()
	}

	title := "Nos produits"
	switch {
	case search != "":
		title = "Résultats pour « " + search + " »"
	case category != "":
		title = string(category)
	}
	b := h.pageData(r, PageMeta{Title: "Produits", PageTitle: title, CurrentPage: PageProducts}).
		With("Categories", categories).
		With("SelectedCategory", string(category)).
		With("Search", search)

	products, err := h.Catalog.Products(r.Context(), service.ProductQuery{Category: category, Search: search})
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		b.WithError(h.notifyError(r, err, "products"))
	}
	h.render(w, r, http.StatusOK, b.With("Products", products).Build())
}

// ProductDetail renders one product. ?quantity= runs an availability check.
// GET /products/{id}.
func (h *UIHandlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	product, err := h.Catalog.Product(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			// The failure notice would repeat what the 404 page already says.
			stateFrom(r.Context()).takeNotices()
			h.NotFound(w, r)
			return
		}
		if h.handleAuthError(w, r, err) {
			return
		}
		h.notifyError(r, err, "product")
		h.redirect(w, r, "/products")
		return
	}

	quantity := clampQuantity(parseIntQuery(r, "quantity", 1), product.StockQuantity)
	b := h.pageData(r, PageMeta{Title: product.Name, CurrentPage: PageProduct}).
		With("Product", product).
		With("Quantity", quantity).
		With("MaxQuantity", clampQuantity(product.StockQuantity, product.StockQuantity)).
		With("LowStock", product.LowStock(model.LowStockThreshold))

	if r.URL.Query().Has("quantity") && product.Purchasable() {
		avail, availErr := h.Catalog.CheckAvailability(r.Context(), product.ID, quantity)
		if availErr != nil {
			h.notifyError(r, availErr, "availability")
		} else {
			b.With("Availability", avail)
		}
	}
	h.render(w, r, http.StatusOK, b.Build())
}

// clampQuantity keeps a requested quantity within 1..min(stock, maxDetailQuantity).
func clampQuantity(q, stock int) int {
	upper := min(stock, maxDetailQuantity)
	if upper < 1 {
		upper = 1
	}
	return max(1, min(q, upper))
}

func isNotFound(err error) bool {
	return apperrors.IsNotFound(err) || apiclient.IsKind(err, apiclient.KindNotFound)
}
