package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - catalog-warmer",
			input:    "catalog-warmer",
			expected: map[ServiceMode]bool{ServiceModeCatalogWarmer: true},
		},
		{
			name:  "services with spaces",
			input: " http , catalog-warmer ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:          true,
				ServiceModeCatalogWarmer: true,
			},
		},
		{
			name:     "duplicate services",
			input:    "http,http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name         string
		services     string
		expectHTTP   bool
		expectWarmer bool
	}{
		{name: "http only", services: "http", expectHTTP: true},
		{name: "warmer only", services: "catalog-warmer", expectWarmer: true},
		{name: "both", services: "http,catalog-warmer", expectHTTP: true, expectWarmer: true},
		{name: "invalid config disables everything", services: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{Services: tt.services}
			if got := cfg.IsHTTPServerEnabled(); got != tt.expectHTTP {
				t.Errorf("IsHTTPServerEnabled() = %v, want %v", got, tt.expectHTTP)
			}
			if got := cfg.IsCatalogWarmerEnabled(); got != tt.expectWarmer {
				t.Errorf("IsCatalogWarmerEnabled() = %v, want %v", got, tt.expectWarmer)
			}
		})
	}
}

func TestValidServiceModes(t *testing.T) {
	modes := ValidServiceModes()
	expected := []ServiceMode{ServiceModeHTTP, ServiceModeCatalogWarmer}
	if !reflect.DeepEqual(modes, expected) {
		t.Errorf("ValidServiceModes() = %v, want %v", modes, expected)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Backend.BaseURL != "http://localhost:8080/api" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Errorf("Backend.Timeout = %v", cfg.Backend.Timeout)
	}
	if cfg.Session.CookieName != "session_id" || cfg.Session.KeyPrefix != "session:" {
		t.Errorf("Session = %+v", cfg.Session)
	}
	if !cfg.Session.Revalidate || cfg.Session.RevalidateInterval != 5*time.Minute {
		t.Errorf("Session revalidation = %v/%v", cfg.Session.Revalidate, cfg.Session.RevalidateInterval)
	}
	if !cfg.Store.CartSerializeMutations || cfg.Store.CartKeyPrefix != "cart:" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Errorf("Redis.URI = %q", cfg.Redis.URI)
	}
	if !cfg.IsHTTPServerEnabled() || cfg.IsCatalogWarmerEnabled() {
		t.Errorf("default services = %q", cfg.Services)
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", " https://api.example.com/api/ ")
	t.Setenv("BACKEND_RETRY_ATTEMPTS", "9")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_REVALIDATE", "false")
	t.Setenv("CART_SERIALIZE_MUTATIONS", "false")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("REDIS_USE_SENTINEL", "true")
	t.Setenv("REDIS_SENTINEL_NODES", "a:26379,b:26379")
	t.Setenv("SERVICES", "http,catalog-warmer")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Backend.BaseURL != "https://api.example.com/api" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.RetryAttempts != 5 {
		t.Errorf("Backend.RetryAttempts = %d, want clamp to 5", cfg.Backend.RetryAttempts)
	}
	if cfg.Session.TTL != 2*time.Hour || cfg.Session.Revalidate {
		t.Errorf("Session = %+v", cfg.Session)
	}
	if cfg.Store.CartSerializeMutations {
		t.Error("expected CartSerializeMutations false")
	}
	if cfg.Store.CatalogCacheTTL != 30*time.Second {
		t.Errorf("CatalogCacheTTL = %v", cfg.Store.CatalogCacheTTL)
	}
	if !cfg.Redis.UseSentinel || !reflect.DeepEqual(cfg.Redis.SentinelNodes, []string{"a:26379", "b:26379"}) {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if !cfg.IsCatalogWarmerEnabled() {
		t.Error("expected catalog warmer enabled")
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name       string
		in         HTTPConfig
		isDev      bool
		wantLevel  int
		wantDomain string
		wantSecure bool
	}{
		{
			name:       "clamps low compression level",
			in:         HTTPConfig{CompressionLevel: 0, SecureCookies: true},
			wantLevel:  1,
			wantSecure: true,
		},
		{
			name:      "clamps high compression level",
			in:        HTTPConfig{CompressionLevel: 12},
			wantLevel: 9,
		},
		{
			name:       "keeps registrable cookie domain",
			in:         HTTPConfig{CompressionLevel: 6, CookieDomain: " .Shop.Example.com "},
			wantLevel:  6,
			wantDomain: "shop.example.com",
		},
		{
			name:      "rejects public suffix cookie domain",
			in:        HTTPConfig{CompressionLevel: 6, CookieDomain: "co.uk"},
			wantLevel: 6,
		},
		{
			name:      "drops localhost cookie domain",
			in:        HTTPConfig{CompressionLevel: 6, CookieDomain: "localhost"},
			wantLevel: 6,
		},
		{
			name:      "dev mode disables secure cookies",
			in:        HTTPConfig{CompressionLevel: 6, SecureCookies: true},
			isDev:     true,
			wantLevel: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.Sanitize(tt.isDev)
			if cfg.CompressionLevel != tt.wantLevel {
				t.Errorf("CompressionLevel = %d, want %d", cfg.CompressionLevel, tt.wantLevel)
			}
			if cfg.CookieDomain != tt.wantDomain {
				t.Errorf("CookieDomain = %q, want %q", cfg.CookieDomain, tt.wantDomain)
			}
			if cfg.SecureCookies != tt.wantSecure {
				t.Errorf("SecureCookies = %v, want %v", cfg.SecureCookies, tt.wantSecure)
			}
		})
	}
}

func TestAppConfig_DetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{HTTP: HTTPConfig{SecureCookies: true}}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatal("expected dev mode from NODE_ENV")
	}
	if cfg.HTTP.SecureCookies {
		t.Error("expected secure cookies off in dev mode")
	}
}

func TestStoreConfig_Sanitize(t *testing.T) {
	cfg := StoreConfig{CatalogCacheTTL: 2 * time.Minute}
	cfg.Sanitize()
	if cfg.CatalogWarmInterval != 2*time.Minute {
		t.Errorf("CatalogWarmInterval = %v, want cache TTL", cfg.CatalogWarmInterval)
	}
	if cfg.CartKeyPrefix != "cart:" || cfg.FeaturedProducts != 1 {
		t.Errorf("Store = %+v", cfg)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()
	if cfg.IsEnabled() {
		t.Fatal("expected metrics disabled when address blank")
	}

	cfg = ObservabilityMetricsConfig{Enabled: true, StatsdAddress: " 127.0.0.1:8125 "}
	cfg.Sanitize()
	if !cfg.IsEnabled() || cfg.StatsdAddress != "127.0.0.1:8125" {
		t.Fatalf("unexpected metrics config: %+v", cfg)
	}
}

func TestObservabilityTracingConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityTracingConfig{Endpoint: " collector:4318 ", ServiceName: " "}
	cfg.Sanitize()
	if cfg.Endpoint != "collector:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.ServiceName != "parapharmacie-storefront" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
}
