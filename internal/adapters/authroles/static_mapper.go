package authroles

import (
	"strings"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// StaticRoleMapper maps backend role spellings to application roles.
// Aliases are matched case-insensitively before falling back to domainauth.ParseRole,
// so deployments whose backend uses other names (e.g. "PHARMACIST") can map them.
type StaticRoleMapper struct {
	Aliases map[string]domainauth.Role
}

var _ ports.RoleMapper = StaticRoleMapper{}

// NewStaticRoleMapper builds a mapper from "ALIAS=role" pairs. Invalid pairs are skipped.
func NewStaticRoleMapper(pairs []string) StaticRoleMapper {
	aliases := make(map[string]domainauth.Role, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		role := domainauth.Role(strings.ToLower(strings.TrimSpace(v)))
		if !role.Valid() {
			continue
		}
		aliases[strings.ToLower(strings.TrimSpace(k))] = role
	}
	return StaticRoleMapper{Aliases: aliases}
}

func (m StaticRoleMapper) Map(raw string) domainauth.Role {
	if role, ok := m.Aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return role
	}
	return domainauth.ParseRole(raw)
}
