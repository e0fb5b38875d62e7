package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/material"
)

// MovementRequest describes one stock movement to record.
//
// Quantity is a positive magnitude for IN, OUT_PROD and OUT_LOSS. For ADJ it
// is signed: positive corrects stock upward as a pure ledger entry, negative
// corrects downward and is drawn from lots like an outbound movement.
type MovementRequest struct {
	MaterialCode   string
	Type           material.MovementType
	Quantity       decimal.Decimal
	LotNumber      string // required for IN
	Supplier       string
	ExpirationDate *time.Time
	RelatedEntryID string
	OperatorID     *uuid.UUID
	Note           string
	// PickStrategy overrides the default FEFO lot selection for outbound
	// movements. Empty means FEFO.
	PickStrategy material.LotPickStrategyType
}

// MovementLine is one ledger row written by a movement
type MovementLine struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	LotID         *uuid.UUID      `json:"lot_id,omitempty"`
	LotNumber     string          `json:"lot_number,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// MovementResult is the outcome of a committed movement
type MovementResult struct {
	MaterialID     uuid.UUID             `json:"material_id"`
	MaterialCode   string                `json:"material_code"`
	MovementType   material.MovementType `json:"movement_type"`
	Lines          []MovementLine        `json:"lines"`
	NewBalance     decimal.Decimal       `json:"new_balance"`
	CreatedLotID   *uuid.UUID            `json:"created_lot_id,omitempty"`
	RelatedEntryID string                `json:"related_entry_id,omitempty"`
	BelowMinimum   bool                  `json:"below_minimum"`
}

// CreateMaterialRequest carries the fields to register a material
type CreateMaterialRequest struct {
	Code         string
	Name         string
	Unit         string
	Category     material.Category
	MinStock     decimal.Decimal
	UnitCost     decimal.Decimal
	LeadTimeDays int
	Location     string
}

// UpdateMaterialRequest carries updatable planning fields of a material
type UpdateMaterialRequest struct {
	MinStock     *decimal.Decimal
	UnitCost     *decimal.Decimal
	LeadTimeDays *int
	Location     *string
}
