package material

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// MaterialRepository manages Material aggregates
type MaterialRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Material, error)
	FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*Material, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Material, error)
	Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, m *Material) error
	// SaveWithLock saves using optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, m *Material) error
	// FindBelowMinimum returns materials whose cached stock is below threshold
	FindBelowMinimum(ctx context.Context, orgID uuid.UUID) ([]Material, error)
}

// StockLotRepository manages stock lots.
//
// FindAllocatableForUpdate is the concurrency anchor of the allocator: it
// must lock the returned rows (SELECT ... FOR UPDATE) for the duration of
// the surrounding database transaction so two movements cannot drain the
// same lot past zero.
type StockLotRepository interface {
	Create(ctx context.Context, lot *StockLot) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*StockLot, error)
	FindByLotNumber(ctx context.Context, orgID uuid.UUID, lotNumber string) (*StockLot, error)
	FindByMaterial(ctx context.Context, orgID, materialID uuid.UUID, filter shared.Filter) ([]StockLot, error)
	// FindAllocatableForUpdate returns approved, non-empty lots of the material
	// ordered for FEFO (expiration ascending, undated last, receipt order as
	// tie-break), with row locks held until the transaction ends.
	FindAllocatableForUpdate(ctx context.Context, orgID, materialID uuid.UUID) ([]StockLot, error)
	Update(ctx context.Context, lot *StockLot) error
	UpdateBatch(ctx context.Context, lots []*StockLot) error
}

// StockTransactionRepository appends to and reads the immutable stock ledger.
// There is deliberately no Update or Delete: corrections are new rows.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *StockTransaction) error
	CreateBatch(ctx context.Context, txs []*StockTransaction) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*StockTransaction, error)
	FindByMaterial(ctx context.Context, orgID, materialID uuid.UUID, filter shared.Filter) ([]StockTransaction, error)
	CountByMaterial(ctx context.Context, orgID, materialID uuid.UUID, filter shared.Filter) (int64, error)
	FindByRelatedEntry(ctx context.Context, orgID uuid.UUID, relatedEntryID string) ([]StockTransaction, error)
	// SumSignedQuantity returns the ledger balance for a material. This is the
	// authoritative stock level; Material.CurrentStock only caches it.
	SumSignedQuantity(ctx context.Context, orgID, materialID uuid.UUID) (decimal.Decimal, error)
}

// StockAlertRepository manages persisted low-stock alerts
type StockAlertRepository interface {
	Create(ctx context.Context, alert *StockAlert) error
	Update(ctx context.Context, alert *StockAlert) error
	FindOpenByMaterial(ctx context.Context, orgID, materialID uuid.UUID) (*StockAlert, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]StockAlert, error)
	Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
}
