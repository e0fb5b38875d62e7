package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormProductionOrderRepository implements ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// Create inserts a new production order
func (r *GormProductionOrderRepository) Create(ctx context.Context, order *planning.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID finds an order by ID within an organization
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.ProductionOrder, error) {
	var order planning.ProductionOrder
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its order number
func (r *GormProductionOrderRepository) FindByOrderNumber(ctx context.Context, orgID uuid.UUID, orderNumber string) (*planning.ProductionOrder, error) {
	var order planning.ProductionOrder
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND order_number = ?", orgID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns a page of orders
func (r *GormProductionOrderRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]planning.ProductionOrder, error) {
	var orders []planning.ProductionOrder
	query := applyOrderFilter(
		r.db.WithContext(ctx).Model(&planning.ProductionOrder{}).Where("org_id = ?", orgID),
		filter, true,
	)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders for an organization
func (r *GormProductionOrderRepository) Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyOrderFilter(
		r.db.WithContext(ctx).Model(&planning.ProductionOrder{}).Where("org_id = ?", orgID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindChildren returns the direct child orders of a parent
func (r *GormProductionOrderRepository) FindChildren(ctx context.Context, orgID, parentID uuid.UUID) ([]planning.ProductionOrder, error) {
	var orders []planning.ProductionOrder
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND parent_order_id = ?", orgID, parentID).
		Order("order_number ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order
func (r *GormProductionOrderRepository) Save(ctx context.Context, order *planning.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SaveWithLock saves using optimistic locking on the aggregate version
func (r *GormProductionOrderRepository) SaveWithLock(ctx context.Context, order *planning.ProductionOrder) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"started_at":   order.StartedAt,
			"completed_at": order.CompletedAt,
			"due_date":     order.DueDate,
			"notes":        order.Notes,
			"version":      order.Version,
			"updated_at":   order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Production order was modified by another transaction")
	}
	return nil
}

func applyOrderFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_code":
			query = query.Where("product_code = ?", value)
		case "roots_only":
			if value == true {
				query = query.Where("parent_order_id IS NULL")
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
	if field := ValidateSortField(filter.OrderBy, ProductionOrderSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}
	return query
}

// Ensure GormProductionOrderRepository implements ProductionOrderRepository
var _ planning.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
