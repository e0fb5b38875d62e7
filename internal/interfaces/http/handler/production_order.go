package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	planningapp "github.com/moldshop/backend/internal/application/planning"
	"github.com/moldshop/backend/internal/interfaces/http/dto"
)

// OrderMetrics records production order activity for observability.
// Implemented by telemetry.BusinessMetrics; nil disables recording.
type OrderMetrics interface {
	RecordOrderCreated(ctx context.Context, orgID uuid.UUID, productCode string)
}

// ProductionOrderHandler handles production order lifecycle API endpoints
type ProductionOrderHandler struct {
	BaseHandler
	orderService *planningapp.OrderService
	metrics      OrderMetrics
}

// NewProductionOrderHandler creates a new ProductionOrderHandler
func NewProductionOrderHandler(orderService *planningapp.OrderService) *ProductionOrderHandler {
	return &ProductionOrderHandler{
		orderService: orderService,
	}
}

// WithMetrics enables business metric recording
func (h *ProductionOrderHandler) WithMetrics(metrics OrderMetrics) *ProductionOrderHandler {
	h.metrics = metrics
	return h
}

// CreateOrdersRequest represents a request to turn an MRP plan into orders
type CreateOrdersRequest struct {
	ProductCode string  `json:"product_code" binding:"required,max=64"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	DueDate     string  `json:"due_date"`
	Notes       string  `json:"notes" binding:"max=500"`
}

// CompleteOrderRequest represents the receiving details for a finished order
type CompleteOrderRequest struct {
	LotNumber string `json:"lot_number" binding:"max=64"`
	Note      string `json:"note" binding:"max=500"`
}

// CreateFromPlan explodes the active BOM and commits the resulting order tree
// with its material reservations in one transaction.
// POST /production-orders
func (h *ProductionOrderHandler) CreateFromPlan(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req CreateOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := planningapp.CreateOrdersRequest{
		ProductCode: req.ProductCode,
		Quantity:    toDecimal(req.Quantity),
		Notes:       req.Notes,
	}
	if req.DueDate != "" {
		due, err := parseDateTime(req.DueDate)
		if err != nil {
			h.BadRequest(c, "Invalid due date format")
			return
		}
		appReq.DueDate = &due
	}

	result, err := h.orderService.CreateFromPlan(c.Request.Context(), orgID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordOrderCreated(c.Request.Context(), orgID, req.ProductCode)
	}
	h.Created(c, result)
}

// Start moves a planned order to in-progress, consuming its reserved materials.
// POST /production-orders/:id/start
func (h *ProductionOrderHandler) Start(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.StartOrder(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Complete finishes an in-progress order, receiving its output as a new lot.
// POST /production-orders/:id/complete
func (h *ProductionOrderHandler) Complete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.CompleteOrder(c.Request.Context(), orgID, orderID, planningapp.CompleteOrderRequest{
		LotNumber: req.LotNumber,
		Note:      req.Note,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel cancels an order and its planned descendants, releasing reservations.
// POST /production-orders/:id/cancel
func (h *ProductionOrderHandler) Cancel(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Get retrieves one order with its reservations and direct children.
// GET /production-orders/:id
func (h *ProductionOrderHandler) Get(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	detail, err := h.orderService.GetOrder(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, detail)
}

// List retrieves a paginated list of production orders.
// GET /production-orders
func (h *ProductionOrderHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := toFilter(listReq)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if productCode := c.Query("product_code"); productCode != "" {
		filter.Filters["product_code"] = productCode
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}
