package portal

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrClientNotFound is returned when an impersonation target does not exist
// in the directory. An unknown id is a valid outcome, not a system failure.
var ErrClientNotFound = shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found in directory")

// ClientDirectory resolves client ids to portal identities. Backed by the
// CRM client repository; returns shared.ErrNotFound for unknown ids.
type ClientDirectory interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ClientIdentity, error)
}
