package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "portal:session:"
	markerKeyPrefix  = "portal:preview:"
)

// RedisSessionStore implements portal.SessionStore using Redis. Suitable for
// distributed deployments where multiple instances serve the same portal.
//
// The two slots live under separate key prefixes with separate TTLs: the
// client session outlives the impersonation marker.
type RedisSessionStore struct {
	client     *redis.Client
	sessionTTL time.Duration
	markerTTL  time.Duration
}

// NewRedisSessionStore creates a session store with an existing Redis client
func NewRedisSessionStore(client *redis.Client, cfg config.SessionConfig) *RedisSessionStore {
	return &RedisSessionStore{
		client:     client,
		sessionTTL: cfg.SessionTTL,
		markerTTL:  cfg.MarkerTTL,
	}
}

func sessionKey(scope string) string {
	return sessionKeyPrefix + scope
}

func markerKey(scope string) string {
	return markerKeyPrefix + scope
}

// SaveClientSession stores the viewer identity for the scope
func (s *RedisSessionStore) SaveClientSession(ctx context.Context, scope string, identity *portal.ClientIdentity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode client session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(scope), payload, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save client session: %w", err)
	}

	return nil
}

// LoadClientSession returns the stored identity for the scope, or nil when
// the slot is empty
func (s *RedisSessionStore) LoadClientSession(ctx context.Context, scope string) (*portal.ClientIdentity, error) {
	payload, err := s.client.Get(ctx, sessionKey(scope)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client session: %w", err)
	}

	var identity portal.ClientIdentity
	if err := json.Unmarshal(payload, &identity); err != nil {
		// A corrupt slot reads as absent rather than poisoning the viewer
		return nil, nil
	}

	return &identity, nil
}

// ClearClientSession removes the session slot for the scope
func (s *RedisSessionStore) ClearClientSession(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, sessionKey(scope)).Err(); err != nil {
		return fmt.Errorf("failed to clear client session: %w", err)
	}
	return nil
}

// SaveImpersonationMarker stores the bare client id flagging an active preview
func (s *RedisSessionStore) SaveImpersonationMarker(ctx context.Context, scope string, clientID string) error {
	if err := s.client.Set(ctx, markerKey(scope), clientID, s.markerTTL).Err(); err != nil {
		return fmt.Errorf("failed to save impersonation marker: %w", err)
	}
	return nil
}

// LoadImpersonationMarker returns the marker for the scope, or empty when
// the slot is empty
func (s *RedisSessionStore) LoadImpersonationMarker(ctx context.Context, scope string) (string, error) {
	clientID, err := s.client.Get(ctx, markerKey(scope)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load impersonation marker: %w", err)
	}
	return clientID, nil
}

// ClearImpersonationMarker removes the marker slot for the scope
func (s *RedisSessionStore) ClearImpersonationMarker(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, markerKey(scope)).Err(); err != nil {
		return fmt.Errorf("failed to clear impersonation marker: %w", err)
	}
	return nil
}

// Ensure RedisSessionStore implements portal.SessionStore
var _ portal.SessionStore = (*RedisSessionStore)(nil)
