package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/parapharmacie-storefront/config"
	"github.com/target/parapharmacie-storefront/internal/testutil"
)

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Services: "http,catalog-warmer",
		Backend:  config.BackendConfig{BaseURL: "http://localhost:8080/api"},
	}
	cfg.Sanitize()
	return cfg
}

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{
			name: "no services enabled",
			want: 0,
		},
		{
			name:  "http only",
			modes: []config.ServiceMode{config.ServiceModeHTTP},
			want:  1,
		},
		{
			name:  "http and catalog warmer",
			modes: []config.ServiceMode{config.ServiceModeHTTP, config.ServiceModeCatalogWarmer},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}

			assert.Equal(t, tt.want, errorChannelCapacity(enabled))
			assert.Equal(t, tt.want+1, errorChannelBufferSize(enabled))
		})
	}
}

func TestNewServices_RequiresDeps(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testAppConfig()})
	require.Error(t, err)
}

func TestNewServices_WiresEveryService(t *testing.T) {
	_, client := testutil.NewMiniRedis(t)

	svc, err := NewServices(&ServiceDeps{Config: testAppConfig(), RedisClient: client})
	require.NoError(t, err)

	assert.NotNil(t, svc.Client)
	assert.NotNil(t, svc.Sessions)
	assert.NotNil(t, svc.Carts)
	assert.NotNil(t, svc.Catalog)
	assert.NotNil(t, svc.Orders)
	assert.NotNil(t, svc.Backoffice)
	assert.NotNil(t, svc.Warmer)
	assert.NotNil(t, svc.Cache)
	assert.Nil(t, svc.Observability.MetricsSink)
	assert.Equal(t, "http://localhost:8080/api", svc.Client.BaseURL())
}

func TestNewServices_RejectsBadBackendURL(t *testing.T) {
	_, client := testutil.NewMiniRedis(t)
	cfg := testAppConfig()
	cfg.Backend.BaseURL = "localhost:8080"

	_, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: client})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build api client")
}

func TestNewServices_RejectsBadTokenKey(t *testing.T) {
	_, client := testutil.NewMiniRedis(t)
	cfg := testAppConfig()
	cfg.Session.TokenKey = "not-a-key"

	_, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: client})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session token key")
}

func TestBuildHTTPHandler_ServesHealthAndReadiness(t *testing.T) {
	_, client := testutil.NewMiniRedis(t)
	cfg := testAppConfig()
	svc, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: client})
	require.NoError(t, err)

	handler, err := buildHTTPHandler(httpHandlerConfig{
		Logger:   testutil.SilentLogger(),
		Services: routerServices(cfg, svc, testutil.SilentLogger()),
		Tracing:  true,
	})
	require.NoError(t, err)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterServices_MapsConfig(t *testing.T) {
	cfg := testAppConfig()
	cfg.HTTP.CookieDomain = "shop.example.com"
	cfg.HTTP.SecureCookies = true
	cfg.Session.CookieName = "sid"

	rs := routerServices(cfg, ServiceContainer{}, nil)

	assert.Equal(t, "sid", rs.Cookies.SessionName)
	assert.Equal(t, "shop.example.com", rs.Cookies.Domain)
	assert.True(t, rs.Cookies.Secure)
	assert.Empty(t, rs.HealthChecks)
	assert.Equal(t, cfg.Store.FeaturedProducts, rs.FeaturedProducts)
}
