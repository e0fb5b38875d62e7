package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by ID within an organization
func (r *GormMaterialRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*material.Material, error) {
	var m material.Material
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByCode finds a material by its unique code within an organization
func (r *GormMaterialRepository) FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*material.Material, error) {
	var m material.Material
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindAll finds all materials for an organization
func (r *GormMaterialRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]material.Material, error) {
	var items []material.Material
	query := applyMaterialFilter(
		r.db.WithContext(ctx).Model(&material.Material{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts materials for an organization
func (r *GormMaterialRepository) Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyMaterialFilter(
		r.db.WithContext(ctx).Model(&material.Material{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a material
func (r *GormMaterialRepository) Save(ctx context.Context, m *material.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormMaterialRepository) SaveWithLock(ctx context.Context, m *material.Material) error {
	result := r.db.WithContext(ctx).
		Model(m).
		Where("id = ? AND version = ?", m.ID, m.Version-1).
		Updates(map[string]interface{}{
			"current_stock":  m.CurrentStock,
			"min_stock":      m.MinStock,
			"unit_cost":      m.UnitCost,
			"lead_time_days": m.LeadTimeDays,
			"location":       m.Location,
			"active":         m.Active,
			"version":        m.Version,
			"updated_at":     m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Material was modified by another transaction")
	}
	return nil
}

// FindBelowMinimum finds materials with a threshold set and stock under it
func (r *GormMaterialRepository) FindBelowMinimum(ctx context.Context, orgID uuid.UUID) ([]material.Material, error) {
	var items []material.Material
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND min_stock > 0 AND current_stock < min_stock", orgID).
		Order("code ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// applyMaterialFilter applies filter options to the query. Pagination and
// ordering are skipped for count queries.
func applyMaterialFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		case "below_minimum":
			if value == true {
				query = query.Where("min_stock > 0 AND current_stock < min_stock")
			}
		case "search":
			if s, ok := value.(string); ok && s != "" {
				pattern := "%" + s + "%"
				query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
			}
		}
	}

	if !paginate {
		return query
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, MaterialSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("code ASC")
	}
	return query
}

// Ensure GormMaterialRepository implements MaterialRepository
var _ material.MaterialRepository = (*GormMaterialRepository)(nil)
