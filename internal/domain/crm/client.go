package crm

import (
	"regexp"
	"strings"
	"time"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientStatus represents the lifecycle status of a dealership client
type ClientStatus string

const (
	ClientStatusLead     ClientStatus = "lead"     // Prospect, no purchase yet
	ClientStatusActive   ClientStatus = "active"   // Has an open deal or owns a coach
	ClientStatusArchived ClientStatus = "archived" // No longer serviced
)

// Client represents a dealership client (coach buyer or service customer).
// It is the aggregate root for client-related operations and backs the
// portal's client directory.
type Client struct {
	shared.TenantAggregateRoot
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_client_tenant_code,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Email         string          `gorm:"type:varchar(200);index"`
	Phone         string          `gorm:"type:varchar(50)"`
	Status        ClientStatus    `gorm:"type:varchar(20);not null;default:'lead'"`
	PortalEnabled bool            `gorm:"not null;default:true"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Outstanding account balance
	CoachModel    string          `gorm:"type:varchar(200)"`                     // Current coach on record, free-form
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with required fields
func NewClient(tenantID uuid.UUID, code, name string) (*Client, error) {
	if err := validateClientCode(code); err != nil {
		return nil, err
	}
	if err := validateClientName(name); err != nil {
		return nil, err
	}

	return &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              ClientStatusLead,
		PortalEnabled:       true,
		Balance:             decimal.Zero,
	}, nil
}

// UpdateContact updates the client's contact information
func (c *Client) UpdateContact(name, email, phone string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetCoachModel records the coach currently associated with the client
func (c *Client) SetCoachModel(model string) error {
	if len(model) > 200 {
		return shared.NewDomainError("INVALID_COACH_MODEL", "Coach model cannot exceed 200 characters")
	}

	c.CoachModel = model
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// AddCharge increases the client's outstanding balance
func (c *Client) AddCharge(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}

	c.Balance = c.Balance.Add(amount)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// ApplyPayment reduces the client's outstanding balance
func (c *Client) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if c.Balance.LessThan(amount) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_BALANCE", "Payment exceeds outstanding balance")
	}

	c.Balance = c.Balance.Sub(amount)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate promotes the client to active status
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}

	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Archive archives the client; archived clients cannot use the portal
func (c *Client) Archive() error {
	if c.Status == ClientStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Client is already archived")
	}

	c.Status = ClientStatusArchived
	c.PortalEnabled = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetPortalAccess toggles the client's portal access
func (c *Client) SetPortalAccess(enabled bool) error {
	if enabled && c.Status == ClientStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Cannot enable portal access for an archived client")
	}

	c.PortalEnabled = enabled
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetNotes sets the client's notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsArchived returns true if the client is archived
func (c *Client) IsArchived() bool {
	return c.Status == ClientStatusArchived
}

// Validation functions

func validateClientCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Client code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Client code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Client code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
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
