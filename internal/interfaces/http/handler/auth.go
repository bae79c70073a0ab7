package handler

import (
	"strings"

	"github.com/coachpoint/backend/internal/application/identity"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandler serves staff authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	tenantID    uuid.UUID
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, portalCfg config.PortalConfig, logger *zap.Logger) *AuthHandler {
	tenantID, _ := uuid.Parse(portalCfg.TenantID)
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		tenantID:    tenantID,
	}
}

// LoginRequest is the staff login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=1"`
}

// RefreshRequest is the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest is the logout request body
type LogoutRequest struct {
	AllSessions bool `json:"all_sessions"`
}

// ChangePasswordRequest is the password change request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// Login authenticates a staff member and issues a token pair
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		TenantID: h.tenantID,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh exchanges a refresh token for a new token pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout revokes the presented access token, optionally every session of
// the staff member
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	// Body is optional; a bare POST logs out the current session only
	_ = c.ShouldBindJSON(&req)

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	if err := h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		AccessToken: token,
		AllSessions: req.AllSessions,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Me returns the authenticated staff member's profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	staff, err := h.authService.GetCurrentStaff(c.Request.Context(), identity.GetCurrentStaffInput{
		StaffID: getUserID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, staff)
}

// ChangePassword updates the authenticated staff member's password
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		StaffID:     getUserID(c),
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
