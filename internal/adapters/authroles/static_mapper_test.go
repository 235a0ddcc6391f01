package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := NewStaticRoleMapper([]string{"PHARMACIST=manager", "owner = admin", "broken", "X=superuser"})

	tests := []struct {
		raw  string
		want domainauth.Role
	}{
		{"PHARMACIST", domainauth.RoleManager},
		{"pharmacist", domainauth.RoleManager},
		{"OWNER", domainauth.RoleAdmin},
		{"ROLE_ADMIN", domainauth.RoleAdmin},
		{"MANAGER", domainauth.RoleManager},
		{"X", domainauth.RoleUser},
		{"", domainauth.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.raw))
		})
	}
	assert.Len(t, m.Aliases, 2)
}

func TestStaticRoleMapper_ZeroValue(t *testing.T) {
	var m StaticRoleMapper
	assert.Equal(t, domainauth.RoleAdmin, m.Map("ADMIN"))
}
