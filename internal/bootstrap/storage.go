package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/familiez/familiez-auth/config"
	"github.com/familiez/familiez-auth/internal/adapters/filestore"
	"github.com/familiez/familiez-auth/internal/adapters/keyring"
	"github.com/familiez/familiez-auth/internal/adapters/memory"
	redistier "github.com/familiez/familiez-auth/internal/adapters/redis"
	"github.com/familiez/familiez-auth/internal/service"
	"github.com/redis/go-redis/v9"
)

// StorageConfig contains configuration for the storage tiers.
type StorageConfig struct {
	Storage config.StorageConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// Storage holds the built tiers and releases their resources on Close.
type Storage struct {
	Tiers  service.Tiers
	closer func() error
}

// Close releases connections held by the tiers.
func (s *Storage) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

// BuildStorage builds the ephemeral, bounded and durable tiers selected by cfg.
func BuildStorage(ctx context.Context, cfg StorageConfig) (*Storage, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := &Storage{}
	st.Tiers.Ephemeral = memory.NewStore()

	switch cfg.Storage.Bounded {
	case config.BackendRedis:
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		st.Tiers.Bounded = redistier.NewTierWithPrefix(client, cfg.Redis.Prefix, cfg.Storage.StateTTL)
		st.closer = client.Close
	default:
		bounded, err := filestore.NewBounded(cfg.Storage.Dir, cfg.Storage.StateTTL)
		if err != nil {
			return nil, fmt.Errorf("open bounded tier: %w", err)
		}
		st.Tiers.Bounded = bounded
	}

	switch cfg.Storage.Durable {
	case config.BackendKeyring:
		st.Tiers.Durable = keyring.NewTier(cfg.Storage.KeyringService)
	default:
		durable, err := filestore.NewDurable(cfg.Storage.Dir)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open durable tier: %w", err), st.Close())
		}
		st.Tiers.Durable = durable
	}

	logger.Debug("storage tiers ready",
		"bounded", string(cfg.Storage.Bounded),
		"durable", string(cfg.Storage.Durable),
		"dir", cfg.Storage.Dir,
	)
	return st, nil
}

// ConnectRedis establishes a connection to Redis.
//
//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client, addrDesc, err := newDirectClient(cfg)
	if err != nil {
		return nil, err
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", redactAddr(addrDesc))
	}
	return client, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newDirectClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, "", errors.New("redis configuration requires a URI")
	}

	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		if opt.Password == "" {
			opt.Password = cfg.Password
		}
		return redis.NewClient(opt), uri, nil
	}

	opts := &redis.Options{
		Addr:     uri,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	return redis.NewClient(opts), uri, nil
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// redactAddr strips credentials from a redis address for logging.
func redactAddr(addr string) string {
	if u, err := url.Parse(addr); err == nil && u.User != nil {
		u.User = url.User("*")
		return u.Redacted()
	}
	if i := strings.LastIndex(addr, "@"); i > -1 {
		return addr[i+1:]
	}
	return addr
}
