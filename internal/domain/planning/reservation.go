package planning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// ReservationStatus is the lifecycle state of a material reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConsumed  ReservationStatus = "CONSUMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// MaterialReservation earmarks a gross component requirement for a production
// order. Reservations are planning intent, not ledger entries: stock only
// moves when the order starts and the reservation is consumed through the
// movement service, which re-validates against fresh balances.
type MaterialReservation struct {
	shared.BaseEntity
	OrgID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservations_org_order,priority:1"`
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_reservations_org_order,priority:2"`
	ComponentCode string            `gorm:"type:varchar(50);not null;index"`
	Quantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ConsumedAt    *time.Time        `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (MaterialReservation) TableName() string {
	return "material_reservations"
}

// NewMaterialReservation creates a pending reservation for an order
func NewMaterialReservation(orgID, orderID uuid.UUID, componentCode string, quantity decimal.Decimal) (*MaterialReservation, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if strings.TrimSpace(componentCode) == "" {
		return nil, shared.NewDomainError("INVALID_COMPONENT", "Component code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	return &MaterialReservation{
		BaseEntity:    shared.NewBaseEntity(),
		OrgID:         orgID,
		OrderID:       orderID,
		ComponentCode: strings.TrimSpace(componentCode),
		Quantity:      quantity,
		Status:        ReservationStatusPending,
	}, nil
}

// Consume marks the reservation as drawn from stock
func (r *MaterialReservation) Consume() error {
	if r.Status != ReservationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Reservation is not pending")
	}
	now := time.Now()
	r.Status = ReservationStatusConsumed
	r.ConsumedAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel releases the reservation without consuming stock
func (r *MaterialReservation) Cancel() error {
	if r.Status != ReservationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Reservation is not pending")
	}
	r.Status = ReservationStatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}
