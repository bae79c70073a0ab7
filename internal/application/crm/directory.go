package crm

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/crm"
	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientDirectoryAdapter exposes the CRM client repository as the portal's
// client directory. Archived and portal-disabled clients resolve as not
// found; the portal has no business previewing them.
type ClientDirectoryAdapter struct {
	clientRepo crm.ClientRepository
}

// NewClientDirectoryAdapter creates a directory backed by the client repository
func NewClientDirectoryAdapter(clientRepo crm.ClientRepository) *ClientDirectoryAdapter {
	return &ClientDirectoryAdapter{clientRepo: clientRepo}
}

// FindByID resolves a client id to a portal identity
func (a *ClientDirectoryAdapter) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*portal.ClientIdentity, error) {
	client, err := a.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if client.IsArchived() || !client.PortalEnabled {
		return nil, shared.ErrNotFound
	}

	identity := portal.NewAuthenticatedIdentity(client.ID.String(), client.Name, client.Email)
	identity.Phone = client.Phone
	return identity, nil
}
