package ports_test

import (
	"testing"

	mocks "github.com/familiez/familiez-auth/internal/mocks/auth"
	"github.com/familiez/familiez-auth/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.StorageTier = (*mocks.MemoryTier)(nil)
	var _ ports.Navigator = (*mocks.RecordingNavigator)(nil)
	var _ ports.TokenBackend = (*mocks.StaticBackend)(nil)
	var _ ports.RoleBackend = (*mocks.StaticBackend)(nil)
	var _ ports.DiscoveryResolver = (*mocks.StaticDiscovery)(nil)
	var _ ports.LogoutNotifier = (*mocks.RecordingNavigator)(nil)
}
