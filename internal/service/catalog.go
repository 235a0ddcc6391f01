package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// Catalog cache keys. Everything under CatalogCachePrefix is dropped together.
const (
	CatalogCachePrefix   = "catalog:"
	catalogCategoriesKey = CatalogCachePrefix + "categories"
	catalogProductsKey   = CatalogCachePrefix + "products"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	API    ports.CatalogAPI      // Required
	Cache  ports.CacheRepository // Optional: without it every read hits the backend
	TTL    time.Duration
	Logger *slog.Logger
}

// CatalogService serves product reads. Category and full product listings are
// cached; concurrent misses share one backend call.
type CatalogService struct {
	api    ports.CatalogAPI
	cache  ports.CacheRepository
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(opts CatalogServiceOptions) (*CatalogService, error) {
	if opts.API == nil {
		return nil, errors.New("catalog API is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		api:    opts.API,
		cache:  opts.Cache,
		ttl:    ttl,
		logger: logger.With("component", "catalog_service"),
	}, nil
}

// ProductQuery selects a catalog listing. Search wins over Category.
type ProductQuery struct {
	Category model.Category
	Search   string
}

// Products lists products matching the query.
func (s *CatalogService) Products(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	switch search := strings.TrimSpace(q.Search); {
	case search != "":
		return s.api.SearchProducts(ctx, search)
	case q.Category != "":
		if !q.Category.Valid() {
			return nil, apperrors.ValidationField("category", "Catégorie inconnue")
		}
		return s.api.ProductsByCategory(ctx, q.Category)
	default:
		return s.AllProducts(ctx)
	}
}

// AllProducts returns the full product listing, cached.
func (s *CatalogService) AllProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := s.cached(ctx, catalogProductsKey, &out, func(fctx context.Context) (any, error) {
		return s.api.ListProducts(fctx)
	})
	return out, err
}

// Featured returns up to n purchasable products for the home page.
func (s *CatalogService) Featured(ctx context.Context, n int) ([]model.Product, error) {
	all, err := s.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, n)
	for _, p := range all {
		if len(out) == n {
			break
		}
		if p.Purchasable() {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the category list, cached. Backend values outside the
// fixed enumeration are dropped.
func (s *CatalogService) Categories(ctx context.Context) ([]model.Category, error) {
	var raw []model.Category
	err := s.cached(ctx, catalogCategoriesKey, &raw, func(fctx context.Context) (any, error) {
		return s.api.Categories(fctx)
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(raw))
	for _, c := range raw {
		if known, ok := model.ParseCategory(string(c)); ok {
			out = append(out, known)
		}
	}
	if len(out) == 0 {
		return model.Categories(), nil
	}
	return out, nil
}

// Product returns one product.
func (s *CatalogService) Product(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, apperrors.NotFound("Produit non trouvé")
	}
	return s.api.GetProduct(ctx, id)
}

// CheckAvailability asks whether quantity units can be ordered.
func (s *CatalogService) CheckAvailability(ctx context.Context, id int64, quantity int) (model.Availability, error) {
	if quantity < 1 {
		return model.Availability{}, apperrors.ValidationField("quantity", "La quantité doit être au moins 1")
	}
	return s.api.CheckAvailability(ctx, id, quantity)
}

// Invalidate drops every cached catalog entry.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.DeletePrefix(ctx, CatalogCachePrefix)
	if err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	s.logger.DebugContext(ctx, "catalog cache invalidated", "keys", n)
	return nil
}

// Warm refreshes the cached listings from the backend.
func (s *CatalogService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	cats, err := s.api.Categories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	return errors.Join(s.put(ctx, catalogCategoriesKey, cats), s.put(ctx, catalogProductsKey, products))
}

// cached decodes key into out, filling it through fetch on a miss. Cache
// failures degrade to a direct backend call.
func (s *CatalogService) cached(ctx context.Context, key string, out any, fetch func(context.Context) (any, error)) error {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
		} else if data != nil {
			if jsonErr := json.Unmarshal(data, out); jsonErr == nil {
				return nil
			}
			s.logger.WarnContext(ctx, "discarding unreadable catalog cache entry", "key", key)
		}
	}

	// The shared fetch must not die with the first caller's request.
	v, err, _ := s.group.Do(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		val, fetchErr := fetch(fctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		data, encErr := json.Marshal(val)
		if encErr != nil {
			return nil, fmt.Errorf("encode %s: %w", key, encErr)
		}
		if s.cache != nil {
			if setErr := s.cache.Set(fctx, key, data, s.ttl); setErr != nil {
				s.logger.WarnContext(fctx, "catalog cache write failed", "key", key, "error", setErr)
			}
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	data, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("unexpected cache fill value for %s", key)
	}
	return json.Unmarshal(data, out)
}

func (s *CatalogService) put(ctx context.Context, key string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.cache.Set(ctx, key, data, s.ttl)
}
