package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	planningapp "github.com/moldshop/backend/internal/application/planning"
)

// PlanningMetrics records MRP activity for observability. Implemented by
// telemetry.BusinessMetrics; nil disables recording.
type PlanningMetrics interface {
	RecordPlanSimulated(ctx context.Context, orgID uuid.UUID, productCode string)
}

// PlanningHandler handles MRP simulation API endpoints
type PlanningHandler struct {
	BaseHandler
	mrpService *planningapp.MRPService
	metrics    PlanningMetrics
}

// NewPlanningHandler creates a new PlanningHandler
func NewPlanningHandler(mrpService *planningapp.MRPService) *PlanningHandler {
	return &PlanningHandler{
		mrpService: mrpService,
	}
}

// WithMetrics enables business metric recording
func (h *PlanningHandler) WithMetrics(metrics PlanningMetrics) *PlanningHandler {
	h.metrics = metrics
	return h
}

// SimulatePlanRequest represents a request to explode a BOM into a plan tree
type SimulatePlanRequest struct {
	ProductCode string  `json:"product_code" binding:"required,max=64"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
}

// Simulate explodes the active BOM of a product into a plan tree without
// creating orders or reservations.
// POST /planning/simulate
func (h *PlanningHandler) Simulate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req SimulatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.mrpService.Simulate(c.Request.Context(), orgID, planningapp.SimulatePlanRequest{
		ProductCode: req.ProductCode,
		Quantity:    toDecimal(req.Quantity),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPlanSimulated(c.Request.Context(), orgID, req.ProductCode)
	}
	h.Success(c, plan)
}
