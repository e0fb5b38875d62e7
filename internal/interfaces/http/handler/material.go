package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/moldshop/backend/internal/application/inventory"
	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/interfaces/http/dto"
)

// MaterialHandler handles material master data and lot API endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *inventoryapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *inventoryapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
	}
}

// CreateMaterialRequest represents a request to register a material
type CreateMaterialRequest struct {
	Code         string  `json:"code" binding:"required,max=64"`
	Name         string  `json:"name" binding:"required,max=255"`
	Unit         string  `json:"unit" binding:"required,max=16"`
	Category     string  `json:"category" binding:"required,oneof=RESIN ADDITIVE COLORANT PACKAGING OTHER"`
	MinStock     float64 `json:"min_stock" binding:"gte=0"`
	UnitCost     float64 `json:"unit_cost" binding:"gte=0"`
	LeadTimeDays int     `json:"lead_time_days" binding:"gte=0"`
	Location     string  `json:"location" binding:"max=64"`
}

// UpdateMaterialRequest represents a request to update planning fields of a material
type UpdateMaterialRequest struct {
	MinStock     *float64 `json:"min_stock" binding:"omitempty,gte=0"`
	UnitCost     *float64 `json:"unit_cost" binding:"omitempty,gte=0"`
	LeadTimeDays *int     `json:"lead_time_days" binding:"omitempty,gte=0"`
	Location     *string  `json:"location" binding:"omitempty,max=64"`
}

// Create registers a new raw material.
// POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := inventoryapp.CreateMaterialRequest{
		Code:         req.Code,
		Name:         req.Name,
		Unit:         req.Unit,
		Category:     material.Category(req.Category),
		MinStock:     toDecimal(req.MinStock),
		UnitCost:     toDecimal(req.UnitCost),
		LeadTimeDays: req.LeadTimeDays,
		Location:     req.Location,
	}

	m, err := h.materialService.CreateMaterial(c.Request.Context(), orgID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, m)
}

// Update changes the planning fields of an existing material.
// PATCH /materials/:code
func (h *MaterialHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Material code is required")
		return
	}

	var req UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := inventoryapp.UpdateMaterialRequest{
		LeadTimeDays: req.LeadTimeDays,
		Location:     req.Location,
	}
	if req.MinStock != nil {
		appReq.MinStock = toDecimalPtr(*req.MinStock)
	}
	if req.UnitCost != nil {
		appReq.UnitCost = toDecimalPtr(*req.UnitCost)
	}

	m, err := h.materialService.UpdateMaterial(c.Request.Context(), orgID, code, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, m)
}

// Get retrieves one material by code.
// GET /materials/:code
func (h *MaterialHandler) Get(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Material code is required")
		return
	}

	m, err := h.materialService.GetMaterial(c.Request.Context(), orgID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, m)
}

// List retrieves a paginated list of materials.
// GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
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
	if category := c.Query("category"); category != "" {
		filter.Filters["category"] = category
	}

	materials, total, err := h.materialService.ListMaterials(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, materials, total, filter.Page, filter.PageSize)
}

// ListLots retrieves the stock lots of one material, oldest expiration first.
// GET /materials/:code/lots
func (h *MaterialHandler) ListLots(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Material code is required")
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

	lots, err := h.materialService.ListLots(c.Request.Context(), orgID, code, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lots)
}

// BlockLot takes a lot out of circulation for quality review.
// POST /lots/:id/block
func (h *MaterialHandler) BlockLot(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	lot, err := h.materialService.BlockLot(c.Request.Context(), orgID, lotID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// ApproveLot returns a blocked lot to circulation.
// POST /lots/:id/approve
func (h *MaterialHandler) ApproveLot(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	lot, err := h.materialService.ApproveLot(c.Request.Context(), orgID, lotID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// ListAlerts retrieves stock alerts, open ones first.
// GET /alerts
func (h *MaterialHandler) ListAlerts(c *gin.Context) {
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

	alerts, total, err := h.materialService.ListAlerts(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, alerts, total, filter.Page, filter.PageSize)
}

// ListBelowMinimum retrieves materials whose cached stock is under their minimum.
// GET /materials/below-minimum
func (h *MaterialHandler) ListBelowMinimum(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	materials, err := h.materialService.ListBelowMinimum(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, materials)
}
