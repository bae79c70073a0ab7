package handler

import (
	"net/http"

	appportal "github.com/coachpoint/backend/internal/application/portal"
	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/coachpoint/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PortalHandler serves the client portal surface: the viewer endpoint the
// portal frontend bootstraps from, and the admin preview entry and exit
// points.
type PortalHandler struct {
	BaseHandler
	viewers    *appportal.ViewerService
	portalCfg  config.PortalConfig
	sessionCfg config.SessionConfig
	cookieCfg  config.CookieConfig
	tenantID   uuid.UUID
}

// NewPortalHandler creates a new portal handler
func NewPortalHandler(
	viewers *appportal.ViewerService,
	portalCfg config.PortalConfig,
	sessionCfg config.SessionConfig,
	cookieCfg config.CookieConfig,
	logger *zap.Logger,
) *PortalHandler {
	tenantID, _ := uuid.Parse(portalCfg.TenantID)
	return &PortalHandler{
		BaseHandler: NewBaseHandler(logger),
		viewers:     viewers,
		portalCfg:   portalCfg,
		sessionCfg:  sessionCfg,
		cookieCfg:   cookieCfg,
		tenantID:    tenantID,
	}
}

// ViewerResponse describes who the portal is currently rendered as
type ViewerResponse struct {
	ClientID  string `json:"clientId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	IsPreview bool   `json:"isPreview"`
	State     string `json:"state"`
}

func toViewerResponse(identity *portal.ClientIdentity) ViewerResponse {
	return ViewerResponse{
		ClientID:  identity.ClientID,
		Name:      identity.Name,
		Email:     identity.Email,
		Phone:     identity.Phone,
		IsPreview: identity.IsPreview,
		State:     string(portal.StateOf(identity)),
	}
}

// Me returns the resolved portal viewer
// GET /portal/me
func (h *PortalHandler) Me(c *gin.Context) {
	viewer := middleware.GetViewerIdentity(c)
	if viewer == nil {
		h.Unauthorized(c, "Portal session required")
		return
	}

	h.Success(c, toViewerResponse(viewer))
}

// PreviewEntry is the admin-facing entry point into a client preview. The
// legacy impersonateClientId parameter is normalized into the portal's own
// preview parameters and the admin is bounced into the portal.
// GET /client-preview?impersonateClientId=x
func (h *PortalHandler) PreviewEntry(c *gin.Context) {
	clientID := c.Query("impersonateClientId")
	if clientID == "" {
		h.BadRequest(c, "impersonateClientId is required")
		return
	}

	target := middleware.AppendPreviewParams(h.portalCfg.HomePath, clientID)
	c.Redirect(http.StatusFound, target)
}

// StartImpersonationRequest is the admin request to preview a client
type StartImpersonationRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

// StartImpersonation begins an admin preview of the given client. Unknown
// clients are a 404 here, unlike navigation links which degrade to a
// placeholder identity.
// POST /api/v1/portal/impersonate
func (h *PortalHandler) StartImpersonation(c *gin.Context) {
	var req StartImpersonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	identity, err := h.viewers.StartImpersonation(c.Request.Context(), appportal.StartImpersonationInput{
		Scope:    middleware.GetScope(c),
		TenantID: h.tenantID,
		AdminID:  getUserID(c),
		ClientID: req.ClientID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toViewerResponse(identity))
}

// ExitPreview ends the scope's preview and sends the browser back to the
// portal landing page. 303 forces the follow-up to be a GET regardless of
// how the exit was triggered.
// POST /portal/exit-preview
func (h *PortalHandler) ExitPreview(c *gin.Context) {
	err := h.viewers.StopImpersonation(c.Request.Context(), appportal.StopImpersonationInput{
		Scope:    middleware.GetScope(c),
		TenantID: h.tenantID,
		AdminID:  getUserID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Drop the browser's scope cookie too; the next request starts from a
	// fresh scope with no viewer residue.
	if h.sessionCfg.ScopeCookieName != "" {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     h.sessionCfg.ScopeCookieName,
			Value:    "",
			Path:     h.cookieCfg.Path,
			Domain:   h.cookieCfg.Domain,
			MaxAge:   -1,
			Secure:   h.cookieCfg.Secure,
			HttpOnly: true,
		})
	}

	c.Redirect(http.StatusSeeOther, h.portalCfg.HomePath)
}
