package planning

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/planning"
)

// SimulatePlanRequest asks for an MRP explosion without creating anything
type SimulatePlanRequest struct {
	ProductCode string
	Quantity    decimal.Decimal
}

// CreateProductRequest carries the fields to register a product
type CreateProductRequest struct {
	Code        string
	Name        string
	Unit        string
	Description string
}

// BOMItemRequest is one component line of a BOM to create
type BOMItemRequest struct {
	ComponentCode   string
	QuantityPerUnit decimal.Decimal
	WastePercent    decimal.Decimal
}

// CreateBOMRequest carries a new BOM version with its component lines
type CreateBOMRequest struct {
	ProductCode string
	Version     int
	Notes       string
	Items       []BOMItemRequest
	// Activate makes the new version active immediately, retiring siblings
	Activate bool
}

// CreateOrdersRequest asks to turn an MRP plan into a production order tree
type CreateOrdersRequest struct {
	ProductCode string
	Quantity    decimal.Decimal
	DueDate     *time.Time
	Notes       string
}

// CreateOrdersResult is the committed order tree for one plan
type CreateOrdersResult struct {
	Plan             *planning.MRPPlanItem      `json:"plan"`
	RootOrder        *planning.ProductionOrder  `json:"root_order"`
	Orders           []*planning.ProductionOrder `json:"orders"`
	ReservationCount int                        `json:"reservation_count"`
}

// CompleteOrderRequest carries the receiving details for a finished order.
// LotNumber identifies the produced batch; empty defaults to the order number.
type CompleteOrderRequest struct {
	LotNumber string
	Note      string
}

// OrderDetail is an order with its reservations and direct children
type OrderDetail struct {
	Order        *planning.ProductionOrder      `json:"order"`
	Reservations []planning.MaterialReservation `json:"reservations"`
	Children     []planning.ProductionOrder     `json:"children"`
}
