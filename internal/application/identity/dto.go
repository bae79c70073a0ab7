package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput contains credentials for a staff login attempt
type LoginInput struct {
	TenantID uuid.UUID
	Username string
	Password string
}

// StaffInfo describes the authenticated staff member
type StaffInfo struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
	Staff                 StaffInfo `json:"staff"`
}

// RefreshTokenInput contains the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult is the outcome of a token refresh
type RefreshTokenResult struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
}

// LogoutInput identifies the session being terminated
type LogoutInput struct {
	AccessToken string
	AllSessions bool
}

// GetCurrentStaffInput identifies the staff member to look up
type GetCurrentStaffInput struct {
	StaffID uuid.UUID
}

// ChangePasswordInput contains the password change request
type ChangePasswordInput struct {
	StaffID     uuid.UUID
	OldPassword string
	NewPassword string
}
