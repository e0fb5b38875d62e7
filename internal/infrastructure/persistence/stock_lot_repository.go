package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormStockLotRepository implements StockLotRepository using GORM
type GormStockLotRepository struct {
	db *gorm.DB
}

// NewGormStockLotRepository creates a new GormStockLotRepository
func NewGormStockLotRepository(db *gorm.DB) *GormStockLotRepository {
	return &GormStockLotRepository{db: db}
}

// Create inserts a new stock lot
func (r *GormStockLotRepository) Create(ctx context.Context, lot *material.StockLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

// FindByID finds a lot by ID within an organization
func (r *GormStockLotRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*material.StockLot, error) {
	var lot material.StockLot
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByLotNumber finds a lot by its lot number within an organization
func (r *GormStockLotRepository) FindByLotNumber(ctx context.Context, orgID uuid.UUID, lotNumber string) (*material.StockLot, error) {
	var lot material.StockLot
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND lot_number = ?", orgID, lotNumber).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByMaterial finds all lots of a material
func (r *GormStockLotRepository) FindByMaterial(ctx context.Context, orgID, materialID uuid.UUID, filter shared.Filter) ([]material.StockLot, error) {
	var lots []material.StockLot
	query := r.db.WithContext(ctx).Model(&material.StockLot{}).
		Where("org_id = ? AND material_id = ?", orgID, materialID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "with_stock":
			if value == true {
				query = query.Where("current_quantity > 0")
			}
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, StockLotSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(fefoOrder)
	}

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// fefoOrder sorts soonest expiry first with undated lots last, ties broken by
// receipt order
const fefoOrder = "COALESCE(expiration_date, '9999-12-31') ASC, created_at ASC"

// FindAllocatableForUpdate locks and returns the approved, non-empty lots of a
// material in FEFO order. The SELECT ... FOR UPDATE serializes concurrent
// allocations of the same material for the lifetime of the surrounding
// transaction; callers must run inside a TransactionScope.
func (r *GormStockLotRepository) FindAllocatableForUpdate(ctx context.Context, orgID, materialID uuid.UUID) ([]material.StockLot, error) {
	var lots []material.StockLot
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("org_id = ? AND material_id = ? AND status = ? AND current_quantity > 0",
			orgID, materialID, material.LotStatusApproved).
		Order(fefoOrder).
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Update saves changes to a lot
func (r *GormStockLotRepository) Update(ctx context.Context, lot *material.StockLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// UpdateBatch saves changes to multiple lots
func (r *GormStockLotRepository) UpdateBatch(ctx context.Context, lots []*material.StockLot) error {
	for _, lot := range lots {
		if err := r.Update(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormStockLotRepository implements StockLotRepository
var _ material.StockLotRepository = (*GormStockLotRepository)(nil)
