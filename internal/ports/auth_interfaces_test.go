package ports_test

import (
	"testing"

	mocks "github.com/target/parapharmacie-storefront/internal/mocks/auth"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// This test only verifies that our doubles conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.CartSnapshotStore = (*mocks.MemoryCartStore)(nil)
	var _ ports.IdentityObserver = (*mocks.RecordingObserver)(nil)
	var _ ports.RoleMapper = mocks.StaticRoleMapper{}
}
