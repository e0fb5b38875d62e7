package material

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeMaterial = "Material"
	AggregateTypeStockLot = "StockLot"
)

// Event type constants
const (
	EventTypeMovementRecorded  = "MovementRecorded"
	EventTypeStockBelowMinimum = "StockBelowMinimum"
	EventTypeLotDepleted       = "LotDepleted"
)

// MovementRecordedEvent is raised after a movement has been committed to the
// ledger and the material balance recomputed
type MovementRecordedEvent struct {
	shared.BaseDomainEvent
	MaterialID     uuid.UUID       `json:"material_id"`
	MaterialCode   string          `json:"material_code"`
	MovementType   MovementType    `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	NewBalance     decimal.Decimal `json:"new_balance"`
	RelatedEntryID string          `json:"related_entry_id,omitempty"`
}

// NewMovementRecordedEvent creates a new MovementRecordedEvent
func NewMovementRecordedEvent(m *Material, movementType MovementType, quantity decimal.Decimal, relatedEntryID string) *MovementRecordedEvent {
	return &MovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRecorded, AggregateTypeMaterial, m.ID, m.OrgID),
		MaterialID:      m.ID,
		MaterialCode:    m.Code,
		MovementType:    movementType,
		Quantity:        quantity,
		NewBalance:      m.CurrentStock,
		RelatedEntryID:  relatedEntryID,
	}
}

// EventType returns the event type name
func (e *MovementRecordedEvent) EventType() string {
	return EventTypeMovementRecorded
}

// StockBelowMinimumEvent is raised when a recomputed balance falls below the
// material's minimum stock threshold
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Unit         string          `json:"unit"`
}

// NewStockBelowMinimumEvent creates a new StockBelowMinimumEvent
func NewStockBelowMinimumEvent(m *Material) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeMaterial, m.ID, m.OrgID),
		MaterialID:      m.ID,
		MaterialCode:    m.Code,
		MaterialName:    m.Name,
		CurrentStock:    m.CurrentStock,
		MinStock:        m.MinStock,
		Unit:            m.Unit,
	}
}

// EventType returns the event type name
func (e *StockBelowMinimumEvent) EventType() string {
	return EventTypeStockBelowMinimum
}

// LotDepletedEvent is raised when an allocation empties a lot
type LotDepletedEvent struct {
	shared.BaseDomainEvent
	LotID      uuid.UUID `json:"lot_id"`
	LotNumber  string    `json:"lot_number"`
	MaterialID uuid.UUID `json:"material_id"`
}

// NewLotDepletedEvent creates a new LotDepletedEvent
func NewLotDepletedEvent(lot *StockLot) *LotDepletedEvent {
	return &LotDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotDepleted, AggregateTypeStockLot, lot.ID, lot.OrgID),
		LotID:           lot.ID,
		LotNumber:       lot.LotNumber,
		MaterialID:      lot.MaterialID,
	}
}

// EventType returns the event type name
func (e *LotDepletedEvent) EventType() string {
	return EventTypeLotDepleted
}
