// Package filestore provides file-backed storage tiers.
//
// Each key is stored as one JSON file holding the value and an optional absolute
// expiry. The bounded-lifetime tier stamps every entry with an expiry; the durable
// tier never expires entries.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a directory of key files. Writes are atomic (temp file + rename).
type Store struct {
	dir        string
	name       string
	defaultTTL time.Duration
	now        func() time.Time
}

type record struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewBounded creates the bounded-lifetime tier rooted at dir. Entries expire after ttl
// unless Set is given its own ttl.
func NewBounded(dir string, ttl time.Duration, opts ...Option) (*Store, error) {
	if ttl <= 0 {
		return nil, errors.New("bounded tier requires a positive ttl")
	}
	return newStore(dir, "bounded", ttl, opts...)
}

// NewDurable creates the durable tier rooted at dir.
func NewDurable(dir string, opts ...Option) (*Store, error) {
	return newStore(dir, "durable", 0, opts...)
}

func newStore(dir, name string, ttl time.Duration, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	root := filepath.Join(dir, name)
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create %s tier directory: %w", name, err)
	}
	s := &Store{dir: root, name: name, defaultTTL: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies the store in log records and error messages.
func (s *Store) Name() string { return s.name }

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Set writes the entry to a temp file and renames it into place, so readers
// never observe a partial write.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	rec := record{Value: value}
	if ttl > 0 {
		exp := s.now().Add(ttl).UTC()
		rec.ExpiresAt = &exp
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s entry: %w", s.name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write %s entry: %w", s.name, err), tmp.Close(), os.Remove(tmpName))
	}
	if err = tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close %s entry: %w", s.name, err), os.Remove(tmpName))
	}
	if err = os.Rename(tmpName, p); err != nil {
		return errors.Join(fmt.Errorf("commit %s entry: %w", s.name, err), os.Remove(tmpName))
	}
	return nil
}

// Get returns the stored value. Expired or corrupt entries are removed and
// read as absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s entry: %w", s.name, err)
	}

	var rec record
	if unmarshalErr := json.Unmarshal(data, &rec); unmarshalErr != nil {
		// A corrupt entry reads as absent and is evicted.
		return "", false, s.Delete(ctx, key)
	}
	if rec.ExpiresAt != nil && !s.now().Before(*rec.ExpiresAt) {
		if deleteErr := s.Delete(ctx, key); deleteErr != nil {
			return "", false, fmt.Errorf("cleanup expired entry: %w", deleteErr)
		}
		return "", false, nil
	}
	return rec.Value, true, nil
}

// Delete removes the entry file if present.
func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s entry: %w", s.name, err)
	}
	return nil
}
