// Package redis provides a Redis-backed manifest store for deployments
// where several hosts share one agent catalog.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/spec"
	backend "github.com/redis/go-redis/v9"
)

// ManifestStore implements spec.Store using Redis. Each version is a
// JSON string key; a per-agent sorted set indexes the versions.
type ManifestStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*ManifestStore)

// WithTTL sets an expiration on stored manifests. Zero means no
// expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *ManifestStore) {
		s.ttl = ttl
	}
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *ManifestStore) {
		s.prefix = prefix
	}
}

// New creates a ManifestStore connecting to the given address.
func New(address, password string, db int, opts ...Option) *ManifestStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a ManifestStore from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *ManifestStore {
	store := &ManifestStore{
		client: client,
		prefix: "lattice:agent:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *ManifestStore) key(agentID, version string) string {
	return s.prefix + agentID + ":v:" + version
}

func (s *ManifestStore) indexKey(agentID string) string {
	return s.prefix + agentID + ":versions"
}

// Save persists the manifest and indexes its version in one pipeline.
func (s *ManifestStore) Save(ctx context.Context, m *spec.Manifest) error {
	if m.Metadata.ID == "" {
		return fmt.Errorf("agent id cannot be empty")
	}
	if m.Version.Version == "" {
		return fmt.Errorf("agent version cannot be empty")
	}
	data, err := spec.MarshalJSON(m)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(m.Metadata.ID, m.Version.Version), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(m.Metadata.ID), backend.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: m.Version.Version,
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(m.Metadata.ID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves one version of an agent.
func (s *ManifestStore) Load(ctx context.Context, agentID, version string) (*spec.Manifest, error) {
	val, err := s.client.Get(ctx, s.key(agentID, version)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return spec.UnmarshalJSON([]byte(val))
}

// ListVersions returns an agent's versions in save order.
func (s *ManifestStore) ListVersions(ctx context.Context, agentID string) ([]string, error) {
	versions, err := s.client.ZRange(ctx, s.indexKey(agentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, domain.ErrAgentNotFound
	}
	return versions, nil
}

// Delete removes one version and its index entry.
func (s *ManifestStore) Delete(ctx context.Context, agentID, version string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(agentID, version))
	pipe.ZRem(ctx, s.indexKey(agentID), version)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the underlying client.
func (s *ManifestStore) Close() error {
	return s.client.Close()
}
