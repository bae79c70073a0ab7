package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/infrastructure/config"
)

func newMemoryStore() *MemorySessionStore {
	return NewMemorySessionStore(config.SessionConfig{
		SessionTTL: time.Hour,
		MarkerTTL:  time.Minute,
	})
}

func TestMemorySessionStore_ClientSession(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := newMemoryStore()
		identity := portal.NewAuthenticatedIdentity("client-1", "Jane Miller", "jane@example.com")

		require.NoError(t, store.SaveClientSession(ctx, "scope-a", identity))

		loaded, err := store.LoadClientSession(ctx, "scope-a")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "client-1", loaded.ClientID)
		assert.Equal(t, "Jane Miller", loaded.Name)
	})

	t.Run("empty slot loads as nil", func(t *testing.T) {
		store := newMemoryStore()

		loaded, err := store.LoadClientSession(ctx, "nothing-here")

		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("scopes are isolated", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.SaveClientSession(ctx, "scope-a",
			portal.NewAuthenticatedIdentity("client-1", "Jane Miller", "jane@example.com")))

		loaded, err := store.LoadClientSession(ctx, "scope-b")

		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("clear removes only the session slot", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.SaveClientSession(ctx, "scope-a",
			portal.NewAuthenticatedIdentity("client-1", "Jane Miller", "jane@example.com")))
		require.NoError(t, store.SaveImpersonationMarker(ctx, "scope-a", "client-1"))

		require.NoError(t, store.ClearClientSession(ctx, "scope-a"))

		loaded, err := store.LoadClientSession(ctx, "scope-a")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		marker, err := store.LoadImpersonationMarker(ctx, "scope-a")
		require.NoError(t, err)
		assert.Equal(t, "client-1", marker)
	})

	t.Run("stored identity is not aliased to the caller's", func(t *testing.T) {
		store := newMemoryStore()
		identity := portal.NewAuthenticatedIdentity("client-1", "Jane Miller", "jane@example.com")
		require.NoError(t, store.SaveClientSession(ctx, "scope-a", identity))

		identity.Name = "mutated"

		loaded, err := store.LoadClientSession(ctx, "scope-a")
		require.NoError(t, err)
		assert.Equal(t, "Jane Miller", loaded.Name)
	})
}

func TestMemorySessionStore_ImpersonationMarker(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.SaveImpersonationMarker(ctx, "scope-a", "client-7"))

		marker, err := store.LoadImpersonationMarker(ctx, "scope-a")

		require.NoError(t, err)
		assert.Equal(t, "client-7", marker)
	})

	t.Run("empty slot loads as empty string", func(t *testing.T) {
		store := newMemoryStore()

		marker, err := store.LoadImpersonationMarker(ctx, "scope-a")

		require.NoError(t, err)
		assert.Empty(t, marker)
	})

	t.Run("clear removes the marker", func(t *testing.T) {
		store := newMemoryStore()
		require.NoError(t, store.SaveImpersonationMarker(ctx, "scope-a", "client-7"))

		require.NoError(t, store.ClearImpersonationMarker(ctx, "scope-a"))

		marker, err := store.LoadImpersonationMarker(ctx, "scope-a")
		require.NoError(t, err)
		assert.Empty(t, marker)
	})

	t.Run("marker expires on its own TTL", func(t *testing.T) {
		store := NewMemorySessionStore(config.SessionConfig{
			SessionTTL: time.Hour,
			MarkerTTL:  10 * time.Millisecond,
		})
		require.NoError(t, store.SaveImpersonationMarker(ctx, "scope-a", "client-7"))

		time.Sleep(30 * time.Millisecond)

		marker, err := store.LoadImpersonationMarker(ctx, "scope-a")
		require.NoError(t, err)
		assert.Empty(t, marker)
	})
}
