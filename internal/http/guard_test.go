package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/service"
)

func restoredAs(role domainauth.Role) *service.RestoreResult {
	return &service.RestoreResult{Session: &domainauth.Session{ID: "s", Role: role}}
}

func TestEvaluateAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		res  *service.RestoreResult
		want GuardDecision
	}{
		{"nothing restored yet", nil, GuardDecision{State: GuardLoading}},
		{"store still loading", &service.RestoreResult{Loading: true}, GuardDecision{State: GuardLoading}},
		{"guest", &service.RestoreResult{}, GuardDecision{State: GuardRedirectLogin, Target: "/login?redirect_uri=%2Forders%3Fpage%3D2"}},
		{"signed in", restoredAs(domainauth.RoleUser), GuardDecision{State: GuardAllow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateAuthenticated(tt.res, "/orders?page=2"))
		})
	}
}

func TestEvaluateRoles(t *testing.T) {
	backoffice := []domainauth.Role{domainauth.RoleManager, domainauth.RoleAdmin}
	tests := []struct {
		name    string
		res     *service.RestoreResult
		allowed []domainauth.Role
		want    GuardDecision
	}{
		{"loading wins over roles", &service.RestoreResult{Loading: true}, backoffice, GuardDecision{State: GuardLoading}},
		{"guest goes to login", &service.RestoreResult{}, backoffice, GuardDecision{State: GuardRedirectLogin, Target: "/login?redirect_uri=%2Fmanager"}},
		{"shopper sent to catalog", restoredAs(domainauth.RoleUser), backoffice, GuardDecision{State: GuardRedirectRoleHome, Target: "/products"}},
		{"manager allowed", restoredAs(domainauth.RoleManager), backoffice, GuardDecision{State: GuardAllow}},
		{"admin allowed", restoredAs(domainauth.RoleAdmin), backoffice, GuardDecision{State: GuardAllow}},
		{"manager kept out of admin", restoredAs(domainauth.RoleManager), []domainauth.Role{domainauth.RoleAdmin}, GuardDecision{State: GuardRedirectRoleHome, Target: "/manager"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateRoles(tt.res, "/manager", tt.allowed...))
		})
	}
}

func TestGuardState_String(t *testing.T) {
	assert.Equal(t, "loading", GuardLoading.String())
	assert.Equal(t, "allow", GuardAllow.String())
	assert.Equal(t, "redirect_login", GuardRedirectLogin.String())
	assert.Equal(t, "redirect_role_home", GuardRedirectRoleHome.String())
	assert.Equal(t, "unknown", GuardState(42).String())
}
