package config

import "time"

// StoreConfig controls cart and catalog behavior.
type StoreConfig struct {
	// CartSerializeMutations applies one session's cart mutations in issue order.
	// When false, concurrent mutations race and the last response wins.
	CartSerializeMutations bool `env:"CART_SERIALIZE_MUTATIONS" envDefault:"true"`

	// CartKeyPrefix namespaces cart snapshots in Redis.
	CartKeyPrefix string `env:"CART_KEY_PREFIX" envDefault:"cart:"`

	// CatalogCacheTTL bounds cached category and product listings.
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	// CatalogWarmInterval is the refresh period of the catalog-warmer service.
	CatalogWarmInterval time.Duration `env:"CATALOG_WARM_INTERVAL" envDefault:"4m"`

	// FeaturedProducts is how many products the home page shows.
	FeaturedProducts int `env:"CATALOG_FEATURED_PRODUCTS" envDefault:"8"`
}

// Sanitize applies guardrails to store configuration.
func (s *StoreConfig) Sanitize() {
	if s.CartKeyPrefix == "" {
		s.CartKeyPrefix = "cart:"
	}
	if s.CatalogCacheTTL <= 0 {
		s.CatalogCacheTTL = 5 * time.Minute
	}
	if s.CatalogWarmInterval <= 0 {
		s.CatalogWarmInterval = s.CatalogCacheTTL
	}
	if s.FeaturedProducts < 1 {
		s.FeaturedProducts = 1
	}
}
