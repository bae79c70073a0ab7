package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/coachpoint/backend/internal/domain/portal"
)

// FallbackSessionStore wraps a primary store (Redis) and degrades to a
// secondary in-process store when the primary fails. A Redis outage must
// never take the portal down with it; the viewer loses cross-instance
// continuity, nothing more.
//
// Reads consult the primary first and fall through on error. Writes go to
// both stores so the fallback stays warm; only the primary's success matters
// when it is reachable.
type FallbackSessionStore struct {
	primary  portal.SessionStore
	fallback portal.SessionStore
	logger   *zap.Logger
}

// NewFallbackSessionStore creates a degrading store wrapper
func NewFallbackSessionStore(primary, fallback portal.SessionStore, logger *zap.Logger) *FallbackSessionStore {
	return &FallbackSessionStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// SaveClientSession writes to both stores, reporting success if either took it
func (s *FallbackSessionStore) SaveClientSession(ctx context.Context, scope string, identity *portal.ClientIdentity) error {
	primaryErr := s.primary.SaveClientSession(ctx, scope, identity)
	if primaryErr != nil {
		s.logger.Warn("primary session store write failed, using fallback",
			zap.String("scope", scope),
			zap.Error(primaryErr))
	}

	fallbackErr := s.fallback.SaveClientSession(ctx, scope, identity)
	if primaryErr != nil && fallbackErr != nil {
		return primaryErr
	}
	return nil
}

// LoadClientSession reads from the primary, degrading to the fallback on error
func (s *FallbackSessionStore) LoadClientSession(ctx context.Context, scope string) (*portal.ClientIdentity, error) {
	identity, err := s.primary.LoadClientSession(ctx, scope)
	if err == nil {
		return identity, nil
	}

	s.logger.Warn("primary session store read failed, using fallback",
		zap.String("scope", scope),
		zap.Error(err))
	return s.fallback.LoadClientSession(ctx, scope)
}

// ClearClientSession clears both stores
func (s *FallbackSessionStore) ClearClientSession(ctx context.Context, scope string) error {
	primaryErr := s.primary.ClearClientSession(ctx, scope)
	if primaryErr != nil {
		s.logger.Warn("primary session store clear failed",
			zap.String("scope", scope),
			zap.Error(primaryErr))
	}

	fallbackErr := s.fallback.ClearClientSession(ctx, scope)
	if primaryErr != nil && fallbackErr != nil {
		return primaryErr
	}
	return nil
}

// SaveImpersonationMarker writes to both stores
func (s *FallbackSessionStore) SaveImpersonationMarker(ctx context.Context, scope string, clientID string) error {
	primaryErr := s.primary.SaveImpersonationMarker(ctx, scope, clientID)
	if primaryErr != nil {
		s.logger.Warn("primary session store write failed, using fallback",
			zap.String("scope", scope),
			zap.Error(primaryErr))
	}

	fallbackErr := s.fallback.SaveImpersonationMarker(ctx, scope, clientID)
	if primaryErr != nil && fallbackErr != nil {
		return primaryErr
	}
	return nil
}

// LoadImpersonationMarker reads from the primary, degrading to the fallback
// on error
func (s *FallbackSessionStore) LoadImpersonationMarker(ctx context.Context, scope string) (string, error) {
	clientID, err := s.primary.LoadImpersonationMarker(ctx, scope)
	if err == nil {
		return clientID, nil
	}

	s.logger.Warn("primary session store read failed, using fallback",
		zap.String("scope", scope),
		zap.Error(err))
	return s.fallback.LoadImpersonationMarker(ctx, scope)
}

// ClearImpersonationMarker clears both stores
func (s *FallbackSessionStore) ClearImpersonationMarker(ctx context.Context, scope string) error {
	primaryErr := s.primary.ClearImpersonationMarker(ctx, scope)
	if primaryErr != nil {
		s.logger.Warn("primary session store clear failed",
			zap.String("scope", scope),
			zap.Error(primaryErr))
	}

	fallbackErr := s.fallback.ClearImpersonationMarker(ctx, scope)
	if primaryErr != nil && fallbackErr != nil {
		return primaryErr
	}
	return nil
}

// Ensure FallbackSessionStore implements portal.SessionStore
var _ portal.SessionStore = (*FallbackSessionStore)(nil)
