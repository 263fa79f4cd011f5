package auth

// Package auth contains simple hand-written test doubles for the session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	"github.com/familiez/familiez-auth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.StorageTier       = (*MemoryTier)(nil)
	_ ports.Navigator         = (*RecordingNavigator)(nil)
	_ ports.LogoutNotifier    = (*RecordingNavigator)(nil)
	_ ports.TokenBackend      = (*StaticBackend)(nil)
	_ ports.RoleBackend       = (*StaticBackend)(nil)
	_ ports.DiscoveryResolver = (*StaticDiscovery)(nil)
)

// ErrUnavailable is returned by doubles configured to fail.
var ErrUnavailable = errors.New("unavailable")

// MemoryTier is an in-memory storage tier that can be told to fail.
type MemoryTier struct {
	TierName string
	// FailWrites makes Set return ErrUnavailable.
	FailWrites bool
	// FailReads makes Get return ErrUnavailable.
	FailReads bool

	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

// NewMemoryTier creates an empty MemoryTier with the given name.
func NewMemoryTier(name string) *MemoryTier {
	return &MemoryTier{
		TierName: name,
		values:   make(map[string]string),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *MemoryTier) Name() string { return m.TierName }

func (m *MemoryTier) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if m.FailWrites {
		return ErrUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MemoryTier) Get(_ context.Context, key string) (string, bool, error) {
	if m.FailReads {
		return "", false, ErrUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryTier) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.ttls, key)
	return nil
}

// Has reports whether key is present, bypassing failure flags.
func (m *MemoryTier) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// Value returns the raw stored value, bypassing failure flags.
func (m *MemoryTier) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// TTL returns the ttl passed with the last Set of key.
func (m *MemoryTier) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

func (m *MemoryTier) init() {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if m.ttls == nil {
		m.ttls = make(map[string]time.Duration)
	}
}

// RecordingNavigator records navigations and logout notifications.
type RecordingNavigator struct {
	// Err is returned from Navigate and NotifyLogout when set.
	Err error

	mu        sync.Mutex
	targets   []string
	logoutURL []string
}

func (n *RecordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return n.Err
}

func (n *RecordingNavigator) NotifyLogout(_ context.Context, logoutURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logoutURL = append(n.logoutURL, logoutURL)
	return n.Err
}

// Targets returns a copy of every navigation target in call order.
func (n *RecordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// LogoutURLs returns a copy of every notified logout URL in call order.
func (n *RecordingNavigator) LogoutURLs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.logoutURL...)
}

// StaticBackend simulates the backend exchange and identity endpoints.
type StaticBackend struct {
	ExchangeFunc func(ctx context.Context, code string) (string, error)
	FetchFunc    func(ctx context.Context, accessToken string) (domainauth.RoleRecord, error)

	// Token is returned by ExchangeCode when ExchangeFunc is nil.
	Token string
	// Role is returned by FetchRole when FetchFunc is nil.
	Role domainauth.RoleRecord

	mu            sync.Mutex
	exchangeCalls int
	fetchCalls    int
}

func (b *StaticBackend) ExchangeCode(ctx context.Context, code string) (string, error) {
	b.mu.Lock()
	b.exchangeCalls++
	b.mu.Unlock()
	if b.ExchangeFunc != nil {
		return b.ExchangeFunc(ctx, code)
	}
	return b.Token, nil
}

func (b *StaticBackend) FetchRole(ctx context.Context, accessToken string) (domainauth.RoleRecord, error) {
	b.mu.Lock()
	b.fetchCalls++
	b.mu.Unlock()
	if b.FetchFunc != nil {
		return b.FetchFunc(ctx, accessToken)
	}
	return b.Role, nil
}

// ExchangeCalls returns how many times ExchangeCode ran.
func (b *StaticBackend) ExchangeCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exchangeCalls
}

// FetchCalls returns how many times FetchRole ran.
func (b *StaticBackend) FetchCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetchCalls
}

// StaticDiscovery returns a fixed document or error.
type StaticDiscovery struct {
	Doc domainauth.DiscoveryDocument
	Err error
}

func (d StaticDiscovery) Resolve(context.Context) (domainauth.DiscoveryDocument, error) {
	return d.Doc, d.Err
}
