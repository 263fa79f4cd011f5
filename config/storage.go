package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackendKind selects the implementation behind a storage tier.
type BackendKind string

const (
	// BackendFile stores values in files under StorageConfig.Dir.
	BackendFile BackendKind = "file"
	// BackendRedis stores values in Redis (bounded-lifetime tier only).
	BackendRedis BackendKind = "redis"
	// BackendKeyring stores values in the OS keyring (durable tier only).
	BackendKeyring BackendKind = "keyring"
)

// UnmarshalText implements encoding.TextUnmarshaler for BackendKind.
func (b *BackendKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "redis", "keyring":
		*b = BackendKind(v)
		return nil
	default:
		return fmt.Errorf("invalid BackendKind: %q (valid options: file, redis, keyring)", v)
	}
}

// DefaultStateTTL bounds how long an in-flight login survives in the bounded-lifetime tier.
const DefaultStateTTL = 10 * time.Minute

// StorageConfig controls the three storage tiers.
type StorageConfig struct {
	// Dir is the root directory for file-backed tiers. Defaults to <user config dir>/familiez.
	Dir string `env:"DIR"`

	// StateTTL is the lifetime of entries in the bounded-lifetime tier.
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"10m"`

	// Bounded selects the bounded-lifetime tier backend (file or redis).
	Bounded BackendKind `env:"BOUNDED_BACKEND" envDefault:"file"`

	// Durable selects the durable tier backend (file or keyring).
	Durable BackendKind `env:"DURABLE_BACKEND" envDefault:"file"`

	// KeyringService is the service name used for keyring entries.
	KeyringService string `env:"KEYRING_SERVICE" envDefault:"familiez"`
}

// Sanitize fills derived defaults.
func (s *StorageConfig) Sanitize() {
	if s.StateTTL <= 0 {
		s.StateTTL = DefaultStateTTL
	}
	s.Dir = strings.TrimSpace(s.Dir)
	if s.Dir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			s.Dir = filepath.Join(base, "familiez")
		} else {
			s.Dir = filepath.Join(os.TempDir(), "familiez")
		}
	}
	if s.Bounded != BackendRedis {
		s.Bounded = BackendFile
	}
	if s.Durable != BackendKeyring {
		s.Durable = BackendFile
	}
	s.KeyringService = strings.TrimSpace(s.KeyringService)
	if s.KeyringService == "" {
		s.KeyringService = "familiez"
	}
}

// RedisConfig contains Redis configuration for the bounded-lifetime tier.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	Prefix   string `env:"PREFIX"   envDefault:"familiez:"`
}
