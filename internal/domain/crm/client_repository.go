package crm

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByIDForTenant finds a client by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindByCode finds a client by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Client, error)

	// FindByEmail finds a client by email within a tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Client, error)

	// FindAllForTenant finds all clients for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, error)

	// FindByStatus finds clients by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ClientStatus, filter shared.Filter) ([]Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete deletes a client
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts clients for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a client with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
