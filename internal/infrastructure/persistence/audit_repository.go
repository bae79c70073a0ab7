package persistence

import (
	"context"

	"github.com/coachpoint/backend/internal/domain/portal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormImpersonationAuditRepository implements ImpersonationAuditRepository
// using GORM. Audit rows are append-only.
type GormImpersonationAuditRepository struct {
	db *gorm.DB
}

// NewGormImpersonationAuditRepository creates a new audit repository
func NewGormImpersonationAuditRepository(db *gorm.DB) *GormImpersonationAuditRepository {
	return &GormImpersonationAuditRepository{db: db}
}

// Save appends an audit record
func (r *GormImpersonationAuditRepository) Save(ctx context.Context, audit *portal.ImpersonationAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// FindRecentForTenant returns the most recent audit records for a tenant
func (r *GormImpersonationAuditRepository) FindRecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]portal.ImpersonationAudit, error) {
	if limit <= 0 {
		limit = 50
	}

	var audits []portal.ImpersonationAudit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// Ensure GormImpersonationAuditRepository implements ImpersonationAuditRepository
var _ portal.ImpersonationAuditRepository = (*GormImpersonationAuditRepository)(nil)
