package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/infrastructure/config"
)

// MemorySessionStore implements portal.SessionStore on an in-process TTL
// cache. Used in development, in tests, and as the degradation target when
// Redis is unreachable. State is lost on restart and not shared between
// instances.
type MemorySessionStore struct {
	sessions *gocache.Cache
	markers  *gocache.Cache
}

// NewMemorySessionStore creates an in-memory session store
func NewMemorySessionStore(cfg config.SessionConfig) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: gocache.New(cfg.SessionTTL, 10*time.Minute),
		markers:  gocache.New(cfg.MarkerTTL, time.Minute),
	}
}

// SaveClientSession stores the viewer identity for the scope
func (s *MemorySessionStore) SaveClientSession(_ context.Context, scope string, identity *portal.ClientIdentity) error {
	// Copy so later mutation by the caller cannot alter the stored state
	stored := *identity
	s.sessions.SetDefault(scope, &stored)
	return nil
}

// LoadClientSession returns the stored identity for the scope, or nil when
// the slot is empty
func (s *MemorySessionStore) LoadClientSession(_ context.Context, scope string) (*portal.ClientIdentity, error) {
	value, found := s.sessions.Get(scope)
	if !found {
		return nil, nil
	}
	identity := *(value.(*portal.ClientIdentity))
	return &identity, nil
}

// ClearClientSession removes the session slot for the scope
func (s *MemorySessionStore) ClearClientSession(_ context.Context, scope string) error {
	s.sessions.Delete(scope)
	return nil
}

// SaveImpersonationMarker stores the bare client id flagging an active preview
func (s *MemorySessionStore) SaveImpersonationMarker(_ context.Context, scope string, clientID string) error {
	s.markers.SetDefault(scope, clientID)
	return nil
}

// LoadImpersonationMarker returns the marker for the scope, or empty when
// the slot is empty
func (s *MemorySessionStore) LoadImpersonationMarker(_ context.Context, scope string) (string, error) {
	value, found := s.markers.Get(scope)
	if !found {
		return "", nil
	}
	return value.(string), nil
}

// ClearImpersonationMarker removes the marker slot for the scope
func (s *MemorySessionStore) ClearImpersonationMarker(_ context.Context, scope string) error {
	s.markers.Delete(scope)
	return nil
}

// Ensure MemorySessionStore implements portal.SessionStore
var _ portal.SessionStore = (*MemorySessionStore)(nil)
