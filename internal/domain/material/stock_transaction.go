package material

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// MovementType is the closed set of ledger movement types. Persisted values
// are validated against this set on the way in and on the way out; an
// unrecognized value is a data error, never a new implicit type.
type MovementType string

const (
	// MovementTypeIn is an inbound receipt (purchase, production output)
	MovementTypeIn MovementType = "IN"
	// MovementTypeOutProd is consumption by a production order
	MovementTypeOutProd MovementType = "OUT_PROD"
	// MovementTypeOutLoss is scrap, spillage or other loss
	MovementTypeOutLoss MovementType = "OUT_LOSS"
	// MovementTypeAdj is a manual correction in either direction
	MovementTypeAdj MovementType = "ADJ"
)

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is a known value
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOutProd, MovementTypeOutLoss, MovementTypeAdj:
		return true
	}
	return false
}

// IsOutbound returns true for types that always decrease stock
func (t MovementType) IsOutbound() bool {
	return t == MovementTypeOutProd || t == MovementTypeOutLoss
}

// AllMovementTypes returns every valid movement type
func AllMovementTypes() []MovementType {
	return []MovementType{MovementTypeIn, MovementTypeOutProd, MovementTypeOutLoss, MovementTypeAdj}
}

// StockTransaction is one immutable row of the stock ledger. Quantity is
// stored signed so the material balance is exactly the sum of its rows.
// Corrections are new ADJ rows; existing rows are never updated or deleted.
type StockTransaction struct {
	shared.BaseEntity
	OrgID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_org_material_time,priority:1"`
	MaterialID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_org_material_time,priority:2"`
	LotID          *uuid.UUID      `gorm:"type:uuid;index:idx_stock_tx_lot"`
	MovementType   MovementType    `gorm:"type:varchar(20);not null;index:idx_stock_tx_type"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceBefore  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RelatedEntryID string          `gorm:"type:varchar(100);index:idx_stock_tx_related"`
	OperatorID     *uuid.UUID      `gorm:"type:uuid"`
	Note           string          `gorm:"type:varchar(255)"`
	OccurredAt     time.Time       `gorm:"type:timestamptz;not null;index:idx_stock_tx_org_material_time,priority:3"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a ledger row. quantity is signed: IN rows must
// be positive, OUT_PROD/OUT_LOSS rows negative, ADJ rows either but not zero.
func NewStockTransaction(
	orgID, materialID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	balanceBefore decimal.Decimal,
) (*StockTransaction, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type: "+string(movementType))
	}
	if quantity.IsZero() {
		return nil, shared.ErrInvalidQuantity
	}

	switch {
	case movementType == MovementTypeIn && quantity.IsNegative():
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Inbound movements must carry a positive quantity")
	case movementType.IsOutbound() && quantity.IsPositive():
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Outbound movements must carry a negative quantity")
	}

	return &StockTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		OrgID:         orgID,
		MaterialID:    materialID,
		MovementType:  movementType,
		Quantity:      quantity,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore.Add(quantity),
		OccurredAt:    time.Now(),
	}, nil
}

// WithLotID ties the row to the lot it drew from or created
func (t *StockTransaction) WithLotID(lotID uuid.UUID) *StockTransaction {
	t.LotID = &lotID
	return t
}

// WithRelatedEntry sets the upstream document reference
func (t *StockTransaction) WithRelatedEntry(entryID string) *StockTransaction {
	t.RelatedEntryID = entryID
	return t
}

// WithOperator sets the user who performed the movement
func (t *StockTransaction) WithOperator(operatorID uuid.UUID) *StockTransaction {
	t.OperatorID = &operatorID
	return t
}

// WithNote attaches a free-form note
func (t *StockTransaction) WithNote(note string) *StockTransaction {
	t.Note = note
	return t
}

// WithOccurredAt overrides the movement timestamp (backdated entries)
func (t *StockTransaction) WithOccurredAt(at time.Time) *StockTransaction {
	t.OccurredAt = at
	return t
}

// IsIncrease returns true if the row increases stock
func (t *StockTransaction) IsIncrease() bool {
	return t.Quantity.IsPositive()
}

// Magnitude returns the unsigned quantity
func (t *StockTransaction) Magnitude() decimal.Decimal {
	return t.Quantity.Abs()
}
