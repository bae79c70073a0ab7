package identity

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StaffRepository defines the interface for staff persistence
type StaffRepository interface {
	// FindByID finds a staff member by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Staff, error)

	// FindByIDForTenant finds a staff member by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Staff, error)

	// FindByUsername finds a staff member by username within a tenant
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*Staff, error)

	// FindAllForTenant finds all staff for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Staff, error)

	// Save creates or updates a staff member
	Save(ctx context.Context, staff *Staff) error

	// Delete deletes a staff member
	Delete(ctx context.Context, id uuid.UUID) error
}
