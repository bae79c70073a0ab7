package portal

import "context"

// SessionStore persists per-browser-scope viewer state. A scope token
// identifies one browser; each scope owns two independent slots with
// independent lifetimes:
//
//   - the client session slot, long-lived, holding the identity the scope
//     is viewing the portal as (real login or admin preview)
//   - the impersonation marker slot, short-lived, holding the bare client id
//     of an active preview
//
// Storage is best-effort. Implementations degrade rather than fail: a miss
// or an unreachable backend reads as absent (nil identity, empty marker),
// and write errors are absorbed after logging. Callers never branch on
// storage health.
type SessionStore interface {
	SaveClientSession(ctx context.Context, scope string, identity *ClientIdentity) error
	LoadClientSession(ctx context.Context, scope string) (*ClientIdentity, error)
	ClearClientSession(ctx context.Context, scope string) error

	SaveImpersonationMarker(ctx context.Context, scope string, clientID string) error
	LoadImpersonationMarker(ctx context.Context, scope string) (string, error)
	ClearImpersonationMarker(ctx context.Context, scope string) error
}
