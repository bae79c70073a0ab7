package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/coachpoint/backend/internal/domain/identity"
	"github.com/coachpoint/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStaffRepository implements StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByID finds a staff member by ID
func (r *GormStaffRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Staff, error) {
	var staff identity.Staff
	if err := r.db.WithContext(ctx).First(&staff, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// FindByIDForTenant finds a staff member by ID within a tenant
func (r *GormStaffRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.Staff, error) {
	var staff identity.Staff
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// FindByUsername finds a staff member by username within a tenant
func (r *GormStaffRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.Staff, error) {
	var staff identity.Staff
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND username = ?", tenantID, strings.ToLower(strings.TrimSpace(username))).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// FindAllForTenant finds all staff for a tenant
func (r *GormStaffRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Staff, error) {
	var staff []identity.Staff
	query := r.db.WithContext(ctx).Model(&identity.Staff{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR display_name ILIKE ?", searchPattern, searchPattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if role, ok := filter.Filters["role"]; ok {
		query = query.Where("role = ?", role)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("username ASC")

	if err := query.Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// Save creates or updates a staff member
func (r *GormStaffRepository) Save(ctx context.Context, staff *identity.Staff) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

// Delete deletes a staff member
func (r *GormStaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Staff{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStaffRepository implements StaffRepository
var _ identity.StaffRepository = (*GormStaffRepository)(nil)
