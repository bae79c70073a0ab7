package portal

import (
	"context"
	"errors"

	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ViewerService owns the portal viewer state machine. It is the only
// component that reads or writes the session store; handlers and middleware
// go through it.
//
// For a given browser scope the viewer is in one of three states: anonymous,
// authenticated client, or impersonating (admin preview). Starting a preview
// from any state lands in impersonating; exiting a preview always lands in
// anonymous.
type ViewerService struct {
	store     portal.SessionStore
	directory portal.ClientDirectory
	auditRepo portal.ImpersonationAuditRepository
	logger    *zap.Logger
}

// NewViewerService creates a new viewer service
func NewViewerService(
	store portal.SessionStore,
	directory portal.ClientDirectory,
	auditRepo portal.ImpersonationAuditRepository,
	logger *zap.Logger,
) *ViewerService {
	return &ViewerService{
		store:     store,
		directory: directory,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ResolveActiveIdentity determines who the request is viewing the portal as.
//
// Explicit preview parameters take priority over any stored session: an
// admin following a preview link must see the requested client even if the
// same browser carries an older session. Without preview parameters the
// stored client session decides; absent that, the viewer is anonymous and
// a nil identity is returned.
//
// The resolved preview identity is persisted so that follow-up navigation
// without query parameters stays inside the preview.
func (s *ViewerService) ResolveActiveIdentity(ctx context.Context, rc RequestContext) (*portal.ClientIdentity, error) {
	if rc.HasPreviewParams() {
		identity := s.resolvePreviewTarget(ctx, rc.TenantID, rc.ClientID)
		s.persistPreview(ctx, rc.Scope, identity)
		return identity, nil
	}

	identity, err := s.store.LoadClientSession(ctx, rc.Scope)
	if err != nil {
		s.logger.Warn("Failed to load client session, treating viewer as anonymous",
			zap.String("scope", rc.Scope), zap.Error(err))
		return nil, nil
	}

	return identity, nil
}

// StartImpersonation begins an admin preview of a client. Unlike identity
// resolution from a navigation link, a directory miss here is surfaced to
// the caller so the admin UI can say the client does not exist.
func (s *ViewerService) StartImpersonation(ctx context.Context, input StartImpersonationInput) (*portal.ClientIdentity, error) {
	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, portal.ErrClientNotFound
	}

	target, err := s.directory.FindByID(ctx, input.TenantID, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, portal.ErrClientNotFound
		}
		s.logger.Error("Directory lookup failed during impersonation start",
			zap.String("client_id", input.ClientID), zap.Error(err))
		return nil, shared.NewDomainError("DIRECTORY_UNAVAILABLE", "Client directory is unavailable, try again")
	}

	identity := target.AsPreview()
	s.persistPreview(ctx, input.Scope, identity)

	s.recordAudit(ctx, input.TenantID, input.AdminID, input.ClientID, portal.AuditActionStarted)

	s.logger.Info("Impersonation started",
		zap.String("admin_id", input.AdminID.String()),
		zap.String("client_id", input.ClientID))

	return identity, nil
}

// StopImpersonation ends a preview for the scope. Both the impersonation
// marker and the preview's client session are cleared; the viewer returns
// to anonymous. Clearing an already-clear scope is a no-op.
func (s *ViewerService) StopImpersonation(ctx context.Context, input StopImpersonationInput) error {
	if err := s.store.ClearImpersonationMarker(ctx, input.Scope); err != nil {
		s.logger.Warn("Failed to clear impersonation marker", zap.Error(err))
	}
	if err := s.store.ClearClientSession(ctx, input.Scope); err != nil {
		s.logger.Warn("Failed to clear client session", zap.Error(err))
	}

	s.recordAudit(ctx, input.TenantID, input.AdminID, "", portal.AuditActionStopped)

	s.logger.Info("Impersonation stopped", zap.String("admin_id", input.AdminID.String()))

	return nil
}

// IsImpersonating reports whether the scope has an active preview
func (s *ViewerService) IsImpersonating(ctx context.Context, scope string) bool {
	return s.ImpersonatedClientID(ctx, scope) != ""
}

// ImpersonatedClientID returns the client id of the scope's active preview,
// or empty when there is none
func (s *ViewerService) ImpersonatedClientID(ctx context.Context, scope string) string {
	clientID, err := s.store.LoadImpersonationMarker(ctx, scope)
	if err != nil {
		s.logger.Warn("Failed to load impersonation marker",
			zap.String("scope", scope), zap.Error(err))
		return ""
	}
	return clientID
}

// resolvePreviewTarget looks the requested client up in the directory. An
// unknown or malformed id yields the placeholder identity so a stale preview
// link still lands the admin on a working page.
func (s *ViewerService) resolvePreviewTarget(ctx context.Context, tenantID uuid.UUID, rawClientID string) *portal.ClientIdentity {
	clientID, err := uuid.Parse(rawClientID)
	if err != nil {
		return portal.NewPlaceholderIdentity(rawClientID)
	}

	target, err := s.directory.FindByID(ctx, tenantID, clientID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Directory lookup failed, falling back to placeholder identity",
				zap.String("client_id", rawClientID), zap.Error(err))
		}
		return portal.NewPlaceholderIdentity(rawClientID)
	}

	return target.AsPreview()
}

// persistPreview writes both viewer slots for the scope: the short-lived
// marker that flags the preview and the session copy that keeps follow-up
// navigation resolving to the previewed client. Failures are logged and
// absorbed; the current request still renders the preview.
func (s *ViewerService) persistPreview(ctx context.Context, scope string, identity *portal.ClientIdentity) {
	if err := s.store.SaveImpersonationMarker(ctx, scope, identity.ClientID); err != nil {
		s.logger.Warn("Failed to save impersonation marker", zap.Error(err))
	}
	if err := s.store.SaveClientSession(ctx, scope, identity); err != nil {
		s.logger.Warn("Failed to save preview session", zap.Error(err))
	}
}

// recordAudit appends an impersonation audit row. Best-effort: a failed
// write is logged but never aborts the preview transition itself.
func (s *ViewerService) recordAudit(ctx context.Context, tenantID, adminID uuid.UUID, clientID string, action portal.AuditAction) {
	if s.auditRepo == nil {
		return
	}
	audit := portal.NewImpersonationAudit(tenantID, adminID, clientID, action)
	if err := s.auditRepo.Save(ctx, audit); err != nil {
		s.logger.Error("Failed to record impersonation audit",
			zap.String("action", string(action)), zap.Error(err))
	}
}
