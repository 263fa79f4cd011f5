// Package mocks provides mock implementations for testing the session manager.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	tier := mocks.NewMockStorageTier(ctrl)
//	tier.EXPECT().Get(gomock.Any(), "familiez_access_token").Return("token", true, nil)
package mocks

// Generate mock for StorageTier interface from internal/ports package.
// This creates MockStorageTier with methods for all StorageTier interface methods:
// Name, Set, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storage_tier_mock.go github.com/familiez/familiez-auth/internal/ports StorageTier

// Generate mock for Navigator interface from internal/ports package.
// This creates MockNavigator with methods for all Navigator interface methods:
// Navigate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=navigator_mock.go github.com/familiez/familiez-auth/internal/ports Navigator

// Generate mock for RoleBackend interface from internal/ports package.
// This creates MockRoleBackend with methods for all RoleBackend interface methods:
// FetchRole
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=role_backend_mock.go github.com/familiez/familiez-auth/internal/ports RoleBackend
