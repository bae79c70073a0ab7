package portal

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditAction is the kind of impersonation event being recorded
type AuditAction string

const (
	AuditActionStarted AuditAction = "started"
	AuditActionStopped AuditAction = "stopped"
)

// ImpersonationAudit records one admin preview transition. Rows are
// append-only; recording is best-effort and never blocks the preview itself.
type ImpersonationAudit struct {
	shared.BaseEntity
	TenantID uuid.UUID   `gorm:"type:uuid;not null;index"`
	AdminID  uuid.UUID   `gorm:"type:uuid;not null;index"`
	ClientID string      `gorm:"type:varchar(100);not null"` // As requested, may not resolve
	Action   AuditAction `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ImpersonationAudit) TableName() string {
	return "impersonation_audits"
}

// NewImpersonationAudit creates an audit record for a preview transition
func NewImpersonationAudit(tenantID, adminID uuid.UUID, clientID string, action AuditAction) *ImpersonationAudit {
	return &ImpersonationAudit{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		AdminID:    adminID,
		ClientID:   clientID,
		Action:     action,
	}
}

// ImpersonationAuditRepository persists impersonation audit records
type ImpersonationAuditRepository interface {
	Save(ctx context.Context, audit *ImpersonationAudit) error
	FindRecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]ImpersonationAudit, error)
}
