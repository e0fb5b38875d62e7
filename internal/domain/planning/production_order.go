package planning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// OrderStatus is the lifecycle state of a production order
type OrderStatus string

const (
	OrderStatusPlanned    OrderStatus = "PLANNED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid returns true if the status is a known value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlanned, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once the order can no longer change
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ProductionOrder is a planned or running manufacturing job. Orders spawned
// from an MRP plan form a tree through ParentOrderID: each PRODUCE node of
// the plan becomes a child order of the node above it.
type ProductionOrder struct {
	shared.OrgAggregateRoot
	OrderNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_prod_orders_org_number,priority:2"`
	ProductCode   string          `gorm:"type:varchar(50);not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'PLANNED';index"`
	ParentOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	DueDate       *time.Time      `gorm:"type:timestamptz"`
	StartedAt     *time.Time      `gorm:"type:timestamptz"`
	CompletedAt   *time.Time      `gorm:"type:timestamptz"`
	Notes         string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// NewProductionOrder creates a new planned production order
func NewProductionOrder(orgID uuid.UUID, orderNumber, productCode string, quantity decimal.Decimal) (*ProductionOrder, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	order := &ProductionOrder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderNumber:      strings.TrimSpace(orderNumber),
		ProductCode:      strings.TrimSpace(productCode),
		Quantity:         quantity,
		Status:           OrderStatusPlanned,
	}
	order.AddDomainEvent(NewOrderCreatedEvent(order))
	return order, nil
}

// SetParent links this order under a parent order
func (o *ProductionOrder) SetParent(parentID uuid.UUID) {
	o.ParentOrderID = &parentID
	o.UpdatedAt = time.Now()
}

// SetDueDate sets the requested completion date
func (o *ProductionOrder) SetDueDate(due time.Time) {
	o.DueDate = &due
	o.UpdatedAt = time.Now()
}

// Start moves the order to IN_PROGRESS. Material consumption happens at this
// transition; the movement layer re-validates stock before anything is drawn.
func (o *ProductionOrder) Start() error {
	if o.Status != OrderStatusPlanned {
		return shared.NewDomainError("INVALID_STATE",
			"Order "+o.OrderNumber+" cannot start from status "+string(o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusInProgress
	o.StartedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, OrderStatusPlanned))
	return nil
}

// Complete moves the order to COMPLETED
func (o *ProductionOrder) Complete() error {
	if o.Status != OrderStatusInProgress {
		return shared.NewDomainError("INVALID_STATE",
			"Order "+o.OrderNumber+" cannot complete from status "+string(o.Status))
	}
	now := time.Now()
	prev := o.Status
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev))
	return nil
}

// Cancel aborts the order. Running orders cannot be cancelled; the material
// they consumed is already off the ledger.
func (o *ProductionOrder) Cancel() error {
	if o.Status != OrderStatusPlanned {
		return shared.NewDomainError("INVALID_STATE",
			"Order "+o.OrderNumber+" cannot be cancelled from status "+string(o.Status))
	}
	prev := o.Status
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev))
	return nil
}
