package planning

import (
	"context"

	"github.com/google/uuid"

	"github.com/moldshop/backend/internal/domain/shared"
)

// ProductRepository manages Product aggregates
type ProductRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*Product, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, p *Product) error
	// ExistsByCode reports whether a product row makes the code manufacturable
	ExistsByCode(ctx context.Context, orgID uuid.UUID, code string) (bool, error)
}

// BOMRepository manages BOM versions and their items
type BOMRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*BillOfMaterials, error)
	// FindActiveByProductCode returns the single active version with items
	// loaded, or shared.ErrBOMNotFound
	FindActiveByProductCode(ctx context.Context, orgID uuid.UUID, productCode string) (*BillOfMaterials, error)
	FindByProductCode(ctx context.Context, orgID uuid.UUID, productCode string) ([]BillOfMaterials, error)
	Save(ctx context.Context, bom *BillOfMaterials) error
	// Activate marks the given version active and deactivates every sibling
	// version of the same product in one write
	Activate(ctx context.Context, orgID, bomID uuid.UUID) error
}

// ProductionOrderRepository manages production orders
type ProductionOrderRepository interface {
	Create(ctx context.Context, order *ProductionOrder) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*ProductionOrder, error)
	FindByOrderNumber(ctx context.Context, orgID uuid.UUID, orderNumber string) (*ProductionOrder, error)
	FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]ProductionOrder, error)
	Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	FindChildren(ctx context.Context, orgID, parentID uuid.UUID) ([]ProductionOrder, error)
	Save(ctx context.Context, order *ProductionOrder) error
	// SaveWithLock saves using optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, order *ProductionOrder) error
}

// ReservationRepository manages material reservations
type ReservationRepository interface {
	Create(ctx context.Context, r *MaterialReservation) error
	CreateBatch(ctx context.Context, rs []*MaterialReservation) error
	FindByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]MaterialReservation, error)
	FindPendingByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]MaterialReservation, error)
	Update(ctx context.Context, r *MaterialReservation) error
}
