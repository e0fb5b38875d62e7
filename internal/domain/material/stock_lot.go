package material

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// LotStatus represents the quality status of a stock lot
type LotStatus string

const (
	// LotStatusApproved means the lot passed incoming inspection and can be consumed
	LotStatusApproved LotStatus = "APPROVED"
	// LotStatusBlocked means the lot is quarantined and must not be allocated
	LotStatusBlocked LotStatus = "BLOCKED"
)

// IsValid returns true if the status is a known value
func (s LotStatus) IsValid() bool {
	return s == LotStatusApproved || s == LotStatusBlocked
}

// StockLot represents a physical lot of material received into the plant.
// Lots carry supplier traceability and drive FEFO consumption ordering.
type StockLot struct {
	shared.BaseEntity
	OrgID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_lots_org_material,priority:1"`
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_lots_org_material,priority:2"`
	LotNumber       string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_stock_lots_org_lot,priority:2"`
	Supplier        string          `gorm:"type:varchar(200)"`
	ExpirationDate  *time.Time      `gorm:"type:timestamptz"`
	InitialQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          LotStatus       `gorm:"type:varchar(20);not null;default:'APPROVED'"`
}

// TableName returns the table name for GORM
func (StockLot) TableName() string {
	return "stock_lots"
}

// NewStockLot creates a new stock lot from an inbound receipt
func NewStockLot(
	orgID, materialID uuid.UUID,
	lotNumber string,
	quantity decimal.Decimal,
	supplier string,
	expirationDate *time.Time,
) (*StockLot, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if strings.TrimSpace(lotNumber) == "" {
		return nil, shared.ErrMissingLotNumber
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	return &StockLot{
		BaseEntity:      shared.NewBaseEntity(),
		OrgID:           orgID,
		MaterialID:      materialID,
		LotNumber:       strings.TrimSpace(lotNumber),
		Supplier:        supplier,
		ExpirationDate:  expirationDate,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
		Status:          LotStatusApproved,
	}, nil
}

// Deduct removes quantity from the lot. The caller must have selected the
// deduction amount against CurrentQuantity already; deducting more than the
// lot holds is a programming error surfaced as ALLOCATION_FAILED.
func (l *StockLot) Deduct(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(l.CurrentQuantity) {
		return shared.NewDomainError("ALLOCATION_FAILED",
			"Cannot deduct more than lot "+l.LotNumber+" holds")
	}
	l.CurrentQuantity = l.CurrentQuantity.Sub(quantity)
	l.UpdatedAt = time.Now()
	return nil
}

// Add returns quantity to the lot (reversal of a deduction)
func (l *StockLot) Add(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	l.CurrentQuantity = l.CurrentQuantity.Add(quantity)
	l.UpdatedAt = time.Now()
	return nil
}

// Block quarantines the lot so the allocator skips it
func (l *StockLot) Block() {
	l.Status = LotStatusBlocked
	l.UpdatedAt = time.Now()
}

// Approve releases the lot for consumption
func (l *StockLot) Approve() {
	l.Status = LotStatusApproved
	l.UpdatedAt = time.Now()
}

// IsExpired returns true if the lot has passed its expiration date
func (l *StockLot) IsExpired() bool {
	if l.ExpirationDate == nil {
		return false
	}
	return l.ExpirationDate.Before(time.Now())
}

// IsDepleted returns true if the lot has no remaining quantity
func (l *StockLot) IsDepleted() bool {
	return l.CurrentQuantity.LessThanOrEqual(decimal.Zero)
}

// IsAllocatable returns true if the lot can be picked by the allocator.
// Expiration does not remove a lot from allocation; it only drives FEFO
// ordering so near-expiry stock leaves first.
func (l *StockLot) IsAllocatable() bool {
	return l.Status == LotStatusApproved && l.CurrentQuantity.GreaterThan(decimal.Zero)
}
