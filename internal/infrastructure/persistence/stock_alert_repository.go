package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormStockAlertRepository implements StockAlertRepository using GORM
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewGormStockAlertRepository creates a new GormStockAlertRepository
func NewGormStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// Create inserts a new alert
func (r *GormStockAlertRepository) Create(ctx context.Context, alert *material.StockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// Update saves changes to an alert
func (r *GormStockAlertRepository) Update(ctx context.Context, alert *material.StockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// FindOpenByMaterial returns the single open alert for a material, or
// shared.ErrNotFound
func (r *GormStockAlertRepository) FindOpenByMaterial(ctx context.Context, orgID, materialID uuid.UUID) (*material.StockAlert, error) {
	var alert material.StockAlert
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND material_id = ? AND status = ?", orgID, materialID, material.AlertStatusOpen).
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindAll returns a page of alerts for an organization
func (r *GormStockAlertRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]material.StockAlert, error) {
	var alerts []material.StockAlert
	query := applyAlertFilter(
		r.db.WithContext(ctx).Model(&material.StockAlert{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Count counts alerts for an organization
func (r *GormStockAlertRepository) Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyAlertFilter(
		r.db.WithContext(ctx).Model(&material.StockAlert{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyAlertFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "alert_type":
			query = query.Where("alert_type = ?", value)
		case "material_code":
			query = query.Where("material_code = ?", value)
		}
	}

	if !paginate {
		return query
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, StockAlertSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}
	return query
}

// Ensure GormStockAlertRepository implements StockAlertRepository
var _ material.StockAlertRepository = (*GormStockAlertRepository)(nil)
