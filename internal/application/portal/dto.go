package portal

import (
	"github.com/google/uuid"
)

// RequestContext carries the per-request facts the viewer service resolves
// identity from: the browser scope token and the preview query parameters,
// if any.
type RequestContext struct {
	Scope    string    // Opaque per-browser scope token
	TenantID uuid.UUID // Dealership the portal host serves
	Preview  bool      // preview=true present in the query string
	ClientID string    // clientId query parameter, raw
}

// HasPreviewParams returns true when the request explicitly asks for a
// preview of a specific client
func (rc RequestContext) HasPreviewParams() bool {
	return rc.Preview && rc.ClientID != ""
}

// StartImpersonationInput describes an admin request to view the portal as
// a client
type StartImpersonationInput struct {
	Scope    string
	TenantID uuid.UUID
	AdminID  uuid.UUID
	ClientID string
}

// StopImpersonationInput describes an admin request to exit a preview
type StopImpersonationInput struct {
	Scope    string
	TenantID uuid.UUID
	AdminID  uuid.UUID
}
