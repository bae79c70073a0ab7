package identity

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/identity"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/coachpoint/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles staff authentication operations
type AuthService struct {
	staffRepo  identity.StaffRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	staffRepo identity.StaffRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		staffRepo:  staffRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login authenticates a staff member and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	staff, err := s.staffRepo.FindByUsername(ctx, input.TenantID, input.Username)
	if err != nil {
		s.logger.Warn("Staff not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !staff.IsActive() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !staff.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: staff.TenantID,
		UserID:   staff.ID,
		Username: staff.Username,
		Role:     string(staff.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	staff.RecordLoginSuccess()
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		// Login still succeeds, the timestamp is advisory
		s.logger.Error("Failed to update staff after successful login", zap.Error(err))
	}

	s.logger.Info("Staff logged in successfully",
		zap.String("username", input.Username),
		zap.String("staff_id", staff.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		Staff:                 toStaffInfo(staff),
	}, nil
}

// RefreshToken refreshes the access token using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, refreshClaims.ID)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
	} else if blacklisted {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Refresh token has been revoked")
	}

	staffID, err := uuid.Parse(refreshClaims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid staff ID in token")
	}

	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		s.logger.Warn("Staff not found during token refresh", zap.String("staff_id", staffID.String()))
		return nil, shared.NewDomainError("STAFF_NOT_FOUND", "Staff member not found")
	}

	if !staff.IsActive() {
		s.logger.Warn("Token refresh for deactivated staff", zap.String("staff_id", staffID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, staff.Username, string(staff.Role))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("staff_id", staffID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented access token. With AllSessions set, every
// token issued to the staff member before now is invalidated.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	claims, err := s.jwtService.ValidateAccessToken(input.AccessToken)
	if err != nil {
		// An expired or garbled token needs no revocation
		s.logger.Debug("Logout with invalid token", zap.Error(err))
		return nil
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist token on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}

	if input.AllSessions {
		ttl := s.jwtService.GetRefreshTokenExpiration()
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, claims.UserID, ttl); err != nil {
			s.logger.Error("Failed to invalidate all sessions on logout", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke sessions")
		}
	}

	s.logger.Info("Staff logged out",
		zap.String("staff_id", claims.UserID),
		zap.Bool("all_sessions", input.AllSessions))

	return nil
}

// GetCurrentStaff retrieves the current staff member's information
func (s *AuthService) GetCurrentStaff(ctx context.Context, input GetCurrentStaffInput) (*StaffInfo, error) {
	staff, err := s.staffRepo.FindByID(ctx, input.StaffID)
	if err != nil {
		return nil, shared.NewDomainError("STAFF_NOT_FOUND", "Staff member not found")
	}

	info := toStaffInfo(staff)
	return &info, nil
}

// ChangePassword changes a staff member's password after verifying the old one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	staff, err := s.staffRepo.FindByID(ctx, input.StaffID)
	if err != nil {
		return shared.NewDomainError("STAFF_NOT_FOUND", "Staff member not found")
	}

	if !staff.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}

	if err := staff.SetPassword(input.NewPassword); err != nil {
		return err
	}

	if err := s.staffRepo.Save(ctx, staff); err != nil {
		s.logger.Error("Failed to update staff after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("Staff password changed", zap.String("staff_id", input.StaffID.String()))

	return nil
}

func toStaffInfo(staff *identity.Staff) StaffInfo {
	return StaffInfo{
		ID:          staff.ID,
		TenantID:    staff.TenantID,
		Username:    staff.Username,
		DisplayName: staff.GetDisplayNameOrUsername(),
		Email:       staff.Email,
		Role:        string(staff.Role),
	}
}

func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
