package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	planningapp "github.com/moldshop/backend/internal/application/planning"
	"github.com/moldshop/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product and bill of materials API endpoints
type ProductHandler struct {
	BaseHandler
	bomService *planningapp.BOMService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(bomService *planningapp.BOMService) *ProductHandler {
	return &ProductHandler{
		bomService: bomService,
	}
}

// CreateProductRequest represents a request to register a finished or semi-finished product
type CreateProductRequest struct {
	Code        string `json:"code" binding:"required,max=64"`
	Name        string `json:"name" binding:"required,max=255"`
	Unit        string `json:"unit" binding:"required,max=16"`
	Description string `json:"description" binding:"max=500"`
}

// BOMItemRequest is one component line of a BOM version
type BOMItemRequest struct {
	ComponentCode   string  `json:"component_code" binding:"required,max=64"`
	QuantityPerUnit float64 `json:"quantity_per_unit" binding:"required,gt=0"`
	WastePercent    float64 `json:"waste_percent" binding:"gte=0,lt=100"`
}

// CreateBOMRequest represents a request to create a new BOM version
type CreateBOMRequest struct {
	Version  int              `json:"version" binding:"required,gt=0"`
	Notes    string           `json:"notes" binding:"max=500"`
	Items    []BOMItemRequest `json:"items" binding:"required,min=1,dive"`
	Activate bool             `json:"activate"`
}

// CreateProduct registers a new product.
// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.bomService.CreateProduct(c.Request.Context(), orgID, planningapp.CreateProductRequest{
		Code:        req.Code,
		Name:        req.Name,
		Unit:        req.Unit,
		Description: req.Description,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetProduct retrieves one product by code.
// GET /products/:code
func (h *ProductHandler) GetProduct(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	product, err := h.bomService.GetProduct(c.Request.Context(), orgID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// ListProducts retrieves a paginated list of products.
// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
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

	products, total, err := h.bomService.ListProducts(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// CreateBOM creates a new BOM version for a product.
// POST /products/:code/boms
func (h *ProductHandler) CreateBOM(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	productCode := c.Param("code")
	if productCode == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	var req CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := planningapp.CreateBOMRequest{
		ProductCode: productCode,
		Version:     req.Version,
		Notes:       req.Notes,
		Activate:    req.Activate,
	}
	for _, item := range req.Items {
		appReq.Items = append(appReq.Items, planningapp.BOMItemRequest{
			ComponentCode:   item.ComponentCode,
			QuantityPerUnit: toDecimal(item.QuantityPerUnit),
			WastePercent:    toDecimal(item.WastePercent),
		})
	}

	bom, err := h.bomService.CreateBOM(c.Request.Context(), orgID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bom)
}

// ActivateBOM makes one BOM version active, retiring its siblings.
// POST /boms/:id/activate
func (h *ProductHandler) ActivateBOM(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	bomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid BOM ID format")
		return
	}

	if err := h.bomService.ActivateBOM(c.Request.Context(), orgID, bomID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetActiveBOM retrieves the active BOM version of a product with its items.
// GET /products/:code/boms/active
func (h *ProductHandler) GetActiveBOM(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	productCode := c.Param("code")
	if productCode == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	bom, err := h.bomService.GetActiveBOM(c.Request.Context(), orgID, productCode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bom)
}

// ListBOMVersions retrieves every BOM version of a product, newest first.
// GET /products/:code/boms
func (h *ProductHandler) ListBOMVersions(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	productCode := c.Param("code")
	if productCode == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	boms, err := h.bomService.ListBOMVersions(c.Request.Context(), orgID, productCode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, boms)
}
