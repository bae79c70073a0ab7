package identity

import (
	"context"
	"testing"
	"time"

	"github.com/coachpoint/backend/internal/domain/identity"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/coachpoint/backend/internal/infrastructure/auth"
	"github.com/coachpoint/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStaffRepository is a mock implementation of StaffRepository
type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.Staff, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.Staff, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Staff, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) Save(ctx context.Context, staff *identity.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newAuthTestService(repo *MockStaffRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-unit-tests-only",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "coachpoint-test",
		MaxRefreshCount:        3,
	})
	return NewAuthService(repo, jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func newTestStaff(t *testing.T, tenantID uuid.UUID, role identity.StaffRole) *identity.Staff {
	t.Helper()
	staff, err := identity.NewStaff(tenantID, "jdoe", "password1", role)
	require.NoError(t, err)
	return staff
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("valid credentials return tokens", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAdmin)

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)
		repo.On("Save", ctx, staff).Return(nil)

		result, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "password1"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "jdoe", result.Staff.Username)
		assert.Equal(t, "admin", result.Staff.Role)
		assert.NotNil(t, staff.LastLoginAt)
		repo.AssertExpectations(t)
	})

	t.Run("unknown username is rejected", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)

		repo.On("FindByUsername", ctx, tenantID, "ghost").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "ghost", Password: "password1"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAgent)

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)

		_, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "wrongpass1"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("deactivated staff cannot log in", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAgent)
		require.NoError(t, staff.Deactivate())

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)

		_, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "password1"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})

	t.Run("login succeeds even if last-login save fails", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAdmin)

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)
		repo.On("Save", ctx, staff).Return(assert.AnError)

		result, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "password1"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("valid refresh token issues a new pair", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAdmin)

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)
		repo.On("Save", ctx, staff).Return(nil)
		login, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "password1"})
		require.NoError(t, err)

		repo.On("FindByID", ctx, staff.ID).Return(staff, nil)

		result, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEqual(t, login.RefreshToken, result.RefreshToken)
	})

	t.Run("garbage refresh token is rejected", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)

		_, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not.a.token"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})

	t.Run("deactivated staff cannot refresh", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAgent)

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)
		repo.On("Save", ctx, staff).Return(nil)
		login, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "password1"})
		require.NoError(t, err)

		require.NoError(t, staff.Deactivate())
		repo.On("FindByID", ctx, staff.ID).Return(staff, nil)

		_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("logout revokes the access token", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAdmin)

		repo.On("FindByUsername", ctx, tenantID, "jdoe").Return(staff, nil)
		repo.On("Save", ctx, staff).Return(nil)
		login, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "jdoe", Password: "password1"})
		require.NoError(t, err)

		err = svc.Logout(ctx, LogoutInput{AccessToken: login.AccessToken})

		assert.NoError(t, err)
	})

	t.Run("logout with garbage token is a no-op", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)

		err := svc.Logout(ctx, LogoutInput{AccessToken: "not.a.token"})

		assert.NoError(t, err)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("changes password with correct old password", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAgent)

		repo.On("FindByID", ctx, staff.ID).Return(staff, nil)
		repo.On("Save", ctx, staff).Return(nil)

		err := svc.ChangePassword(ctx, ChangePasswordInput{
			StaffID:     staff.ID,
			OldPassword: "password1",
			NewPassword: "newsecret2",
		})

		require.NoError(t, err)
		assert.True(t, staff.VerifyPassword("newsecret2"))
	})

	t.Run("rejects wrong old password", func(t *testing.T) {
		repo := new(MockStaffRepository)
		svc := newAuthTestService(repo)
		staff := newTestStaff(t, tenantID, identity.StaffRoleAgent)

		repo.On("FindByID", ctx, staff.ID).Return(staff, nil)

		err := svc.ChangePassword(ctx, ChangePasswordInput{
			StaffID:     staff.ID,
			OldPassword: "wrongpass1",
			NewPassword: "newsecret2",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}
