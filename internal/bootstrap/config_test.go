package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/parapharmacie-storefront/config"
)

func TestValidateServiceConfig(t *testing.T) {
	require.Error(t, ValidateServiceConfig(nil))

	cfg := testAppConfig()
	require.NoError(t, ValidateServiceConfig(cfg))

	cfg.Services = "http,checkout-worker"
	require.Error(t, ValidateServiceConfig(cfg))

	cfg = testAppConfig()
	cfg.Backend.BaseURL = ""
	require.Error(t, ValidateServiceConfig(cfg))
}

func TestGetEnabledServices(t *testing.T) {
	assert.Empty(t, GetEnabledServices(nil))
	assert.Empty(t, GetEnabledServices(&config.AppConfig{Services: "bogus"}))
	assert.Equal(t, []string{"catalog-warmer", "http"}, GetEnabledServices(testAppConfig()))
}
