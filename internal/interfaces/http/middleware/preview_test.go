package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appportal "github.com/coachpoint/backend/internal/application/portal"
	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/coachpoint/backend/internal/infrastructure/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDirectory struct {
	clients map[string]*portal.ClientIdentity
}

func (d *stubDirectory) FindByID(_ context.Context, _, id uuid.UUID) (*portal.ClientIdentity, error) {
	if identity, ok := d.clients[id.String()]; ok {
		return identity, nil
	}
	return nil, shared.ErrNotFound
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		SessionTTL:      time.Hour,
		MarkerTTL:       time.Minute,
		ScopeCookieName: "cp_scope",
	}
}

func newTestViewerService(clients map[string]*portal.ClientIdentity) (*appportal.ViewerService, portal.SessionStore) {
	store := session.NewMemorySessionStore(testSessionConfig())
	svc := appportal.NewViewerService(store, &stubDirectory{clients: clients}, nil, zap.NewNop())
	return svc, store
}

func TestScopeCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sessionCfg := testSessionConfig()
	cookieCfg := config.CookieConfig{Path: "/", SameSite: "lax"}

	router := gin.New()
	router.Use(ScopeCookie(sessionCfg, cookieCfg))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetScope(c))
	})

	t.Run("mints a scope for a new browser", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		var scopeCookie *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == "cp_scope" {
				scopeCookie = ck
			}
		}
		require.NotNil(t, scopeCookie)
		assert.True(t, scopeCookie.HttpOnly)

		// The freshly minted scope is already visible to the same request
		assert.Equal(t, scopeCookie.Value, w.Body.String())

		_, err := uuid.Parse(scopeCookie.Value)
		assert.NoError(t, err, "scope token should be a uuid")
	})

	t.Run("keeps an existing scope", func(t *testing.T) {
		existing := uuid.New().String()

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "cp_scope", Value: existing})
		router.ServeHTTP(w, req)

		assert.Equal(t, existing, w.Body.String())
		assert.Empty(t, w.Result().Cookies(), "no new cookie should be set")
	})
}

func TestAppendPreviewParams(t *testing.T) {
	tests := []struct {
		name     string
		location string
		clientID string
		expected string
	}{
		{
			name:     "bare path",
			location: "/portal/invoices",
			clientID: "abc-123",
			expected: "/portal/invoices?clientId=abc-123&preview=true",
		},
		{
			name:     "root",
			location: "/",
			clientID: "abc-123",
			expected: "/?clientId=abc-123&preview=true",
		},
		{
			name:     "absolute url",
			location: "https://portal.example.com/home",
			clientID: "xyz",
			expected: "https://portal.example.com/home?clientId=xyz&preview=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AppendPreviewParams(tt.location, tt.clientID))
		})
	}
}

func TestPreviewNavigation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	scope := uuid.New().String()
	clientID := uuid.New().String()

	newRouter := func(svc *appportal.ViewerService) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(ScopeKey, scope)
			c.Next()
		})
		router.Use(PreviewNavigation(svc))
		router.GET("/redirect", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/portal/home")
		})
		router.GET("/redirect-with-query", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/portal/home?tab=invoices")
		})
		router.GET("/plain", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("rewrites redirects while impersonating", func(t *testing.T) {
		svc, store := newTestViewerService(nil)
		require.NoError(t, store.SaveImpersonationMarker(context.Background(), scope, clientID))

		w := httptest.NewRecorder()
		router := newRouter(svc)
		router.ServeHTTP(w, httptest.NewRequest("GET", "/redirect", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/portal/home?clientId="+clientID+"&preview=true", w.Header().Get("Location"))
	})

	t.Run("leaves redirects with a query string alone", func(t *testing.T) {
		svc, store := newTestViewerService(nil)
		require.NoError(t, store.SaveImpersonationMarker(context.Background(), scope, clientID))

		w := httptest.NewRecorder()
		router := newRouter(svc)
		router.ServeHTTP(w, httptest.NewRequest("GET", "/redirect-with-query", nil))

		assert.Equal(t, "/portal/home?tab=invoices", w.Header().Get("Location"))
	})

	t.Run("does nothing without an active preview", func(t *testing.T) {
		svc, _ := newTestViewerService(nil)

		w := httptest.NewRecorder()
		router := newRouter(svc)
		router.ServeHTTP(w, httptest.NewRequest("GET", "/redirect", nil))

		assert.Equal(t, "/portal/home", w.Header().Get("Location"))
	})

	t.Run("ignores non-redirect responses", func(t *testing.T) {
		svc, store := newTestViewerService(nil)
		require.NoError(t, store.SaveImpersonationMarker(context.Background(), scope, clientID))

		w := httptest.NewRecorder()
		router := newRouter(svc)
		router.ServeHTTP(w, httptest.NewRequest("GET", "/plain", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
	})
}

func TestPortalAccess(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tenantID := uuid.New()
	clientID := uuid.New()
	portalCfg := config.PortalConfig{
		TenantID:  tenantID.String(),
		LoginPath: "/portal/login",
		HomePath:  "/portal",
	}

	clients := map[string]*portal.ClientIdentity{
		clientID.String(): portal.NewPreviewIdentity(clientID.String(), "Sunset RV Rentals", "office@sunsetrv.com"),
	}

	newRouter := func(svc *appportal.ViewerService, scope string) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(ScopeKey, scope)
			c.Next()
		})
		router.Use(PortalAccess(svc, portalCfg))
		router.GET("/portal/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, GetViewerIdentity(c))
		})
		return router
	}

	t.Run("anonymous browser navigation redirects to login", func(t *testing.T) {
		svc, _ := newTestViewerService(clients)
		router := newRouter(svc, uuid.New().String())

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/portal/me", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/portal/login", w.Header().Get("Location"))
	})

	t.Run("anonymous API request gets 401", func(t *testing.T) {
		svc, _ := newTestViewerService(clients)
		router := newRouter(svc, uuid.New().String())

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/portal/me", nil)
		req.Header.Set("Accept", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("preview params resolve the previewed client", func(t *testing.T) {
		svc, _ := newTestViewerService(clients)
		router := newRouter(svc, uuid.New().String())

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/portal/me?preview=true&clientId="+clientID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sunset RV Rentals")
		assert.Contains(t, w.Body.String(), `"isPreview":true`)
	})

	t.Run("stored session admits follow-up navigation without params", func(t *testing.T) {
		svc, store := newTestViewerService(clients)
		scope := uuid.New().String()
		identity := portal.NewAuthenticatedIdentity(clientID.String(), "Sunset RV Rentals", "office@sunsetrv.com")
		require.NoError(t, store.SaveClientSession(context.Background(), scope, identity))

		router := newRouter(svc, scope)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/portal/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sunset RV Rentals")
	})

	t.Run("unknown preview target falls back to placeholder", func(t *testing.T) {
		svc, _ := newTestViewerService(clients)
		router := newRouter(svc, uuid.New().String())

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/portal/me?preview=true&clientId="+uuid.New().String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), portal.PlaceholderName)
	})
}
