package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormStockTransactionRepository implements StockTransactionRepository using
// GORM. The ledger is append-only: this repository deliberately exposes no
// update or delete path.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Create appends a ledger row
func (r *GormStockTransactionRepository) Create(ctx context.Context, tx *material.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// CreateBatch appends multiple ledger rows in order
func (r *GormStockTransactionRepository) CreateBatch(ctx context.Context, txs []*material.StockTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(txs).Error
}

// FindByID finds a ledger row by ID within an organization
func (r *GormStockTransactionRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*material.StockTransaction, error) {
	var tx material.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByMaterial returns a page of a material's ledger rows
func (r *GormStockTransactionRepository) FindByMaterial(ctx context.Context, orgID, materialID uuid.UUID, filter shared.Filter) ([]material.StockTransaction, error) {
	var rows []material.StockTransaction
	query := applyLedgerFilter(
		r.db.WithContext(ctx).Model(&material.StockTransaction{}).
			Where("org_id = ? AND material_id = ?", orgID, materialID),
		filter, true,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByMaterial counts a material's ledger rows
func (r *GormStockTransactionRepository) CountByMaterial(ctx context.Context, orgID, materialID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyLedgerFilter(
		r.db.WithContext(ctx).Model(&material.StockTransaction{}).
			Where("org_id = ? AND material_id = ?", orgID, materialID),
		filter, false,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByRelatedEntry returns every ledger row tagged with the given business
// document reference
func (r *GormStockTransactionRepository) FindByRelatedEntry(ctx context.Context, orgID uuid.UUID, relatedEntryID string) ([]material.StockTransaction, error) {
	var rows []material.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND related_entry_id = ?", orgID, relatedEntryID).
		Order("occurred_at ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumSignedQuantity sums the signed quantities of a material's ledger. This is
// the authoritative balance.
func (r *GormStockTransactionRepository) SumSignedQuantity(ctx context.Context, orgID, materialID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&material.StockTransaction{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("org_id = ? AND material_id = ?", orgID, materialID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func applyLedgerFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "lot_id":
			query = query.Where("lot_id = ?", value)
		case "related_entry_id":
			query = query.Where("related_entry_id = ?", value)
		case "from":
			query = query.Where("occurred_at >= ?", value)
		case "to":
			query = query.Where("occurred_at < ?", value)
		}
	}

	if !paginate {
		return query
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, StockTransactionSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("occurred_at DESC, created_at DESC")
	}
	return query
}

// Ensure GormStockTransactionRepository implements StockTransactionRepository
var _ material.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
