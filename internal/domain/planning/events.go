package planning

import (
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeProductionOrder = "ProductionOrder"
)

// Event type constants
const (
	EventTypeOrderCreated       = "ProductionOrderCreated"
	EventTypeOrderStatusChanged = "ProductionOrderStatusChanged"
)

// OrderCreatedEvent is raised when a production order is planned
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	IsChild     bool            `json:"is_child"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *ProductionOrder) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeProductionOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		ProductCode:     o.ProductCode,
		Quantity:        o.Quantity,
		IsChild:         o.ParentOrderID != nil,
	}
}

// EventType returns the event type name
func (e *OrderCreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// OrderStatusChangedEvent is raised on every order lifecycle transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	ProductCode string      `json:"product_code"`
	FromStatus  OrderStatus `json:"from_status"`
	ToStatus    OrderStatus `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *ProductionOrder, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeProductionOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		ProductCode:     o.ProductCode,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

// EventType returns the event type name
func (e *OrderStatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}
