package middleware

import (
	"net/http"
	"net/url"
	"strings"

	appportal "github.com/coachpoint/backend/internal/application/portal"
	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/coachpoint/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Portal context keys
const (
	ScopeKey          = "portal_scope"
	ViewerIdentityKey = "portal_viewer"
)

// Preview query parameters recognized on portal routes
const (
	PreviewParam  = "preview"
	ClientIDParam = "clientId"
)

// ScopeCookie ensures every request carries a browser scope token. The token
// is an opaque uuid stored in a cookie; all viewer session state is keyed by
// it, so two browsers never share a viewer. A missing or empty cookie gets a
// fresh token minted on the spot so the same request can already use it.
func ScopeCookie(sessionCfg config.SessionConfig, cookieCfg config.CookieConfig) gin.HandlerFunc {
	sameSite := parseSameSite(cookieCfg.SameSite)
	maxAge := int(sessionCfg.SessionTTL.Seconds())

	return func(c *gin.Context) {
		scope, err := c.Cookie(sessionCfg.ScopeCookieName)
		if err != nil || scope == "" {
			scope = uuid.New().String()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     sessionCfg.ScopeCookieName,
				Value:    scope,
				Path:     cookieCfg.Path,
				Domain:   cookieCfg.Domain,
				MaxAge:   maxAge,
				Secure:   cookieCfg.Secure,
				HttpOnly: true,
				SameSite: sameSite,
			})
		}

		c.Set(ScopeKey, scope)
		c.Next()
	}
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// PreviewNavigation rewrites redirects issued while the scope is previewing a
// client so the preview follows the admin across navigation. A 3xx Location
// without a query string gets preview=true&clientId=<id> appended; a Location
// that already carries a query string is left alone, the handler that built
// it knows better. When no preview is active the middleware does nothing, so
// it detaches on its own the moment impersonation ends.
func PreviewNavigation(viewers *appportal.ViewerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusMultipleChoices || status >= http.StatusBadRequest {
			return
		}

		location := c.Writer.Header().Get("Location")
		if location == "" || strings.Contains(location, "?") {
			return
		}

		clientID := viewers.ImpersonatedClientID(c.Request.Context(), GetScope(c))
		if clientID == "" {
			return
		}

		c.Writer.Header().Set("Location", AppendPreviewParams(location, clientID))
	}
}

// AppendPreviewParams appends the preview parameters to a redirect target.
// An unparseable target is returned unchanged rather than mangled.
func AppendPreviewParams(location, clientID string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}

	q := u.Query()
	q.Set(PreviewParam, "true")
	q.Set(ClientIDParam, clientID)
	u.RawQuery = q.Encode()

	return u.String()
}

// PortalAccess guards portal routes. It resolves who the request is viewing
// the portal as and rejects anonymous viewers: browser navigation is sent to
// the login page, API clients get a 401 envelope. The resolved identity is
// stored in the gin context and the viewer's client id is folded into the
// request logger.
func PortalAccess(viewers *appportal.ViewerService, portalCfg config.PortalConfig) gin.HandlerFunc {
	tenantID, _ := uuid.Parse(portalCfg.TenantID)

	return func(c *gin.Context) {
		rc := appportal.RequestContext{
			Scope:    GetScope(c),
			TenantID: tenantID,
			Preview:  c.Query(PreviewParam) == "true",
			ClientID: c.Query(ClientIDParam),
		}

		identity, err := viewers.ResolveActiveIdentity(c.Request.Context(), rc)
		if err != nil || identity == nil {
			if acceptsHTML(c) {
				c.Redirect(http.StatusFound, portalCfg.LoginPath)
				c.Abort()
				return
			}
			requestID, _ := c.Get("request_id")
			rid, _ := requestID.(string)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_UNAUTHORIZED",
					"message":    "Portal session required",
					"request_id": rid,
				},
			})
			return
		}

		c.Set(ViewerIdentityKey, identity)

		ctx := c.Request.Context()
		ctx, _ = logger.WithViewerClientID(ctx, logger.FromContext(ctx), identity.ClientID)
		c.Request = c.Request.WithContext(ctx)

		logger.L(ctx).Debug("Portal viewer resolved",
			zap.Bool("preview", identity.IsPreview))

		c.Next()
	}
}

// acceptsHTML reports whether the request looks like browser navigation
// rather than an API call
func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// GetScope retrieves the browser scope token from gin.Context
func GetScope(c *gin.Context) string {
	if scope, exists := c.Get(ScopeKey); exists {
		if s, ok := scope.(string); ok {
			return s
		}
	}
	return ""
}

// GetViewerIdentity retrieves the resolved portal viewer from gin.Context,
// or nil when the route ran without the portal access guard
func GetViewerIdentity(c *gin.Context) *portal.ClientIdentity {
	if identity, exists := c.Get(ViewerIdentityKey); exists {
		if id, ok := identity.(*portal.ClientIdentity); ok {
			return id
		}
	}
	return nil
}
