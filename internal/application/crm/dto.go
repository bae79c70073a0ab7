package crm

import (
	"time"

	"github.com/coachpoint/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Code       string `json:"code" binding:"required,min=1,max=50"`
	Name       string `json:"name" binding:"required,min=1,max=200"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
	CoachModel string `json:"coach_model" binding:"max=200"`
	Notes      string `json:"notes"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email      *string `json:"email" binding:"omitempty,email,max=200"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	CoachModel *string `json:"coach_model" binding:"omitempty,max=200"`
	Notes      *string `json:"notes"`
}

// RecordChargeRequest represents a charge or payment against a client account
type RecordChargeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Status        string          `json:"status"`
	PortalEnabled bool            `json:"portal_enabled"`
	Balance       decimal.Decimal `json:"balance"`
	CoachModel    string          `json:"coach_model"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

func toClientResponse(client *crm.Client) *ClientResponse {
	return &ClientResponse{
		ID:            client.ID,
		TenantID:      client.TenantID,
		Code:          client.Code,
		Name:          client.Name,
		Email:         client.Email,
		Phone:         client.Phone,
		Status:        string(client.Status),
		PortalEnabled: client.PortalEnabled,
		Balance:       client.Balance,
		CoachModel:    client.CoachModel,
		Notes:         client.Notes,
		CreatedAt:     client.CreatedAt,
		UpdatedAt:     client.UpdatedAt,
		Version:       client.Version,
	}
}
