package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

// MockSessionStore is a mock implementation of portal.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SaveClientSession(ctx context.Context, scope string, identity *portal.ClientIdentity) error {
	args := m.Called(ctx, scope, identity)
	return args.Error(0)
}

func (m *MockSessionStore) LoadClientSession(ctx context.Context, scope string) (*portal.ClientIdentity, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.ClientIdentity), args.Error(1)
}

func (m *MockSessionStore) ClearClientSession(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockSessionStore) SaveImpersonationMarker(ctx context.Context, scope string, clientID string) error {
	args := m.Called(ctx, scope, clientID)
	return args.Error(0)
}

func (m *MockSessionStore) LoadImpersonationMarker(ctx context.Context, scope string) (string, error) {
	args := m.Called(ctx, scope)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) ClearImpersonationMarker(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

// MockClientDirectory is a mock implementation of portal.ClientDirectory
type MockClientDirectory struct {
	mock.Mock
}

func (m *MockClientDirectory) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*portal.ClientIdentity, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.ClientIdentity), args.Error(1)
}

// MockAuditRepository is a mock implementation of portal.ImpersonationAuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Save(ctx context.Context, audit *portal.ImpersonationAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) FindRecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]portal.ImpersonationAudit, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]portal.ImpersonationAudit), args.Error(1)
}

func newTestService() (*ViewerService, *MockSessionStore, *MockClientDirectory, *MockAuditRepository) {
	store := new(MockSessionStore)
	directory := new(MockClientDirectory)
	auditRepo := new(MockAuditRepository)
	svc := NewViewerService(store, directory, auditRepo, zap.NewNop())
	return svc, store, directory, auditRepo
}

// =============================================================================
// ResolveActiveIdentity
// =============================================================================

func TestResolveActiveIdentity(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("preview params resolve to the requested client", func(t *testing.T) {
		svc, store, directory, _ := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).
			Return(portal.NewAuthenticatedIdentity(clientID.String(), "Dana Whitfield", "dana@example.com"), nil)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{
			Scope: "scope-1", TenantID: tenantID, Preview: true, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.True(t, identity.IsPreview)
		assert.Equal(t, "Dana Whitfield", identity.Name)
		store.AssertExpectations(t)
	})

	t.Run("preview params win over an existing stored session", func(t *testing.T) {
		svc, store, directory, _ := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).
			Return(portal.NewAuthenticatedIdentity(clientID.String(), "Dana Whitfield", "dana@example.com"), nil)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{
			Scope: "scope-1", TenantID: tenantID, Preview: true, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		assert.Equal(t, clientID.String(), identity.ClientID)
		// The stored session is never consulted when preview params are present
		store.AssertNotCalled(t, "LoadClientSession", mock.Anything, mock.Anything)
	})

	t.Run("unknown preview target yields placeholder identity", func(t *testing.T) {
		svc, store, directory, _ := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).Return(nil, shared.ErrNotFound)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{
			Scope: "scope-1", TenantID: tenantID, Preview: true, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		assert.Equal(t, portal.PlaceholderName, identity.Name)
		assert.Equal(t, portal.PlaceholderEmail, identity.Email)
		assert.True(t, identity.IsPreview)
	})

	t.Run("malformed preview client id yields placeholder identity", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		store.On("SaveImpersonationMarker", ctx, "scope-1", "not-a-uuid").Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{
			Scope: "scope-1", TenantID: tenantID, Preview: true, ClientID: "not-a-uuid",
		})

		require.NoError(t, err)
		assert.Equal(t, portal.PlaceholderName, identity.Name)
		assert.Equal(t, "not-a-uuid", identity.ClientID)
	})

	t.Run("preview flag without client id falls back to stored session", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		stored := portal.NewAuthenticatedIdentity("42", "Dana Whitfield", "dana@example.com")
		store.On("LoadClientSession", ctx, "scope-1").Return(stored, nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{Scope: "scope-1", TenantID: tenantID, Preview: true})

		require.NoError(t, err)
		assert.Equal(t, stored, identity)
	})

	t.Run("stored session resolves without preview params", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		stored := portal.NewPreviewIdentity("42", "Dana Whitfield", "dana@example.com")
		store.On("LoadClientSession", ctx, "scope-1").Return(stored, nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{Scope: "scope-1", TenantID: tenantID})

		require.NoError(t, err)
		assert.Equal(t, stored, identity)
		assert.True(t, identity.IsPreview)
	})

	t.Run("empty scope resolves to anonymous", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		store.On("LoadClientSession", ctx, "").Return(nil, nil)

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{TenantID: tenantID})

		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("store read failure degrades to anonymous", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		store.On("LoadClientSession", ctx, "scope-1").Return(nil, errors.New("redis down"))

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{Scope: "scope-1", TenantID: tenantID})

		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("store write failure still renders the preview", func(t *testing.T) {
		svc, store, directory, _ := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).
			Return(portal.NewAuthenticatedIdentity(clientID.String(), "Dana Whitfield", "dana@example.com"), nil)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(errors.New("redis down"))
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(errors.New("redis down"))

		identity, err := svc.ResolveActiveIdentity(ctx, RequestContext{
			Scope: "scope-1", TenantID: tenantID, Preview: true, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		assert.True(t, identity.IsPreview)
	})
}

// =============================================================================
// StartImpersonation / StopImpersonation
// =============================================================================

func TestStartImpersonation(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	adminID := uuid.New()

	t.Run("starts preview for a known client", func(t *testing.T) {
		svc, store, directory, auditRepo := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).
			Return(portal.NewAuthenticatedIdentity(clientID.String(), "Dana Whitfield", "dana@example.com"), nil)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)
		auditRepo.On("Save", ctx, mock.MatchedBy(func(a *portal.ImpersonationAudit) bool {
			return a.Action == portal.AuditActionStarted && a.AdminID == adminID
		})).Return(nil)

		identity, err := svc.StartImpersonation(ctx, StartImpersonationInput{
			Scope: "scope-1", TenantID: tenantID, AdminID: adminID, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		assert.True(t, identity.IsPreview)
		assert.Equal(t, "Dana Whitfield", identity.Name)
		store.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
	})

	t.Run("preview carries the client's phone number", func(t *testing.T) {
		svc, store, directory, auditRepo := newTestService()
		clientID := uuid.New()
		target := portal.NewAuthenticatedIdentity(clientID.String(), "Dana Whitfield", "dana@example.com")
		target.Phone = "555-0142"
		directory.On("FindByID", ctx, tenantID, clientID).Return(target, nil)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)
		auditRepo.On("Save", ctx, mock.Anything).Return(nil)

		identity, err := svc.StartImpersonation(ctx, StartImpersonationInput{
			Scope: "scope-1", TenantID: tenantID, AdminID: adminID, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		assert.True(t, identity.IsPreview)
		assert.Equal(t, "555-0142", identity.Phone)
	})

	t.Run("unknown client surfaces CLIENT_NOT_FOUND", func(t *testing.T) {
		svc, _, directory, _ := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).Return(nil, shared.ErrNotFound)

		_, err := svc.StartImpersonation(ctx, StartImpersonationInput{
			Scope: "scope-1", TenantID: tenantID, AdminID: adminID, ClientID: clientID.String(),
		})

		assert.ErrorIs(t, err, portal.ErrClientNotFound)
	})

	t.Run("malformed client id surfaces CLIENT_NOT_FOUND", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		_, err := svc.StartImpersonation(ctx, StartImpersonationInput{
			Scope: "scope-1", TenantID: tenantID, AdminID: adminID, ClientID: "not-a-uuid",
		})

		assert.ErrorIs(t, err, portal.ErrClientNotFound)
	})

	t.Run("directory outage surfaces a retryable error", func(t *testing.T) {
		svc, _, directory, _ := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).Return(nil, errors.New("connection refused"))

		_, err := svc.StartImpersonation(ctx, StartImpersonationInput{
			Scope: "scope-1", TenantID: tenantID, AdminID: adminID, ClientID: clientID.String(),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DIRECTORY_UNAVAILABLE", domainErr.Code)
	})

	t.Run("audit failure does not abort the preview", func(t *testing.T) {
		svc, store, directory, auditRepo := newTestService()
		clientID := uuid.New()
		directory.On("FindByID", ctx, tenantID, clientID).
			Return(portal.NewAuthenticatedIdentity(clientID.String(), "Dana Whitfield", "dana@example.com"), nil)
		store.On("SaveImpersonationMarker", ctx, "scope-1", clientID.String()).Return(nil)
		store.On("SaveClientSession", ctx, "scope-1", mock.Anything).Return(nil)
		auditRepo.On("Save", ctx, mock.Anything).Return(errors.New("insert failed"))

		identity, err := svc.StartImpersonation(ctx, StartImpersonationInput{
			Scope: "scope-1", TenantID: tenantID, AdminID: adminID, ClientID: clientID.String(),
		})

		require.NoError(t, err)
		assert.True(t, identity.IsPreview)
	})
}

func TestStopImpersonation(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	adminID := uuid.New()

	t.Run("clears both viewer slots", func(t *testing.T) {
		svc, store, _, auditRepo := newTestService()
		store.On("ClearImpersonationMarker", ctx, "scope-1").Return(nil)
		store.On("ClearClientSession", ctx, "scope-1").Return(nil)
		auditRepo.On("Save", ctx, mock.MatchedBy(func(a *portal.ImpersonationAudit) bool {
			return a.Action == portal.AuditActionStopped
		})).Return(nil)

		err := svc.StopImpersonation(ctx, StopImpersonationInput{Scope: "scope-1", TenantID: tenantID, AdminID: adminID})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("store failures are absorbed", func(t *testing.T) {
		svc, store, _, auditRepo := newTestService()
		store.On("ClearImpersonationMarker", ctx, "scope-1").Return(errors.New("redis down"))
		store.On("ClearClientSession", ctx, "scope-1").Return(errors.New("redis down"))
		auditRepo.On("Save", ctx, mock.Anything).Return(nil)

		err := svc.StopImpersonation(ctx, StopImpersonationInput{Scope: "scope-1", TenantID: tenantID, AdminID: adminID})

		assert.NoError(t, err)
	})
}

func TestIsImpersonating(t *testing.T) {
	ctx := context.Background()

	t.Run("true while a marker is present", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		store.On("LoadImpersonationMarker", ctx, "scope-1").Return("42", nil)

		assert.True(t, svc.IsImpersonating(ctx, "scope-1"))
		assert.Equal(t, "42", svc.ImpersonatedClientID(ctx, "scope-1"))
	})

	t.Run("false without a marker", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		store.On("LoadImpersonationMarker", ctx, "scope-1").Return("", nil)

		assert.False(t, svc.IsImpersonating(ctx, "scope-1"))
	})

	t.Run("false when the store is unreachable", func(t *testing.T) {
		svc, store, _, _ := newTestService()
		store.On("LoadImpersonationMarker", ctx, "scope-1").Return("", errors.New("redis down"))

		assert.False(t, svc.IsImpersonating(ctx, "scope-1"))
	})
}
