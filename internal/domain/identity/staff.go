package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// StaffStatus represents the status of a staff member
type StaffStatus string

const (
	StaffStatusActive      StaffStatus = "active"
	StaffStatusDeactivated StaffStatus = "deactivated"
)

// StaffRole represents the staff member's role in the dealership
type StaffRole string

const (
	StaffRoleAdmin StaffRole = "admin" // Back-office admin, may preview the portal
	StaffRoleAgent StaffRole = "agent" // Sales/service agent
)

// Password cost for bcrypt
const bcryptCost = 12

// Staff represents a dealership staff member
// It is the aggregate root for staff-related operations
type Staff struct {
	shared.TenantAggregateRoot
	Username     string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_staff_tenant_username,priority:2"`
	Email        string      `gorm:"type:varchar(200);index"`
	PasswordHash string      `gorm:"type:varchar(200);not null"`
	DisplayName  string      `gorm:"type:varchar(100)"`
	Role         StaffRole   `gorm:"type:varchar(20);not null;default:'agent'"`
	Status       StaffStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (Staff) TableName() string {
	return "staff"
}

// NewStaff creates a new active staff member
func NewStaff(tenantID uuid.UUID, username, password string, role StaffRole) (*Staff, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Staff{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:        passwordHash,
		Role:                role,
		Status:              StaffStatusActive,
	}, nil
}

// SetEmail sets the staff member's email
func (s *Staff) SetEmail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}

	s.Email = email
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetDisplayName sets the staff member's display name
func (s *Staff) SetDisplayName(name string) error {
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}

	s.DisplayName = name
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetPassword sets a new password (admin reset, no old password check)
func (s *Staff) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	s.PasswordHash = passwordHash
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (s *Staff) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password))
	return err == nil
}

// Deactivate deactivates the staff member
func (s *Staff) Deactivate() error {
	if s.Status == StaffStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Staff member is already deactivated")
	}

	s.Status = StaffStatusDeactivated
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Activate reactivates the staff member
func (s *Staff) Activate() error {
	if s.Status == StaffStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Staff member is already active")
	}

	s.Status = StaffStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// RecordLoginSuccess records a successful login
func (s *Staff) RecordLoginSuccess() {
	now := time.Now()
	s.LastLoginAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()
}

// IsActive returns true if the staff member is active
func (s *Staff) IsActive() bool {
	return s.Status == StaffStatusActive
}

// CanImpersonate returns true if the staff member may preview the portal
// as a client
func (s *Staff) CanImpersonate() bool {
	return s.Role == StaffRoleAdmin && s.IsActive()
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (s *Staff) GetDisplayNameOrUsername() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Username
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func validateRole(role StaffRole) error {
	switch role {
	case StaffRoleAdmin, StaffRoleAgent:
		return nil
	default:
		return shared.NewDomainError("INVALID_ROLE", "Staff role must be 'admin' or 'agent'")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
