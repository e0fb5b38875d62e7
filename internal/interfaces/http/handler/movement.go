package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/moldshop/backend/internal/application/inventory"
	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
	"github.com/moldshop/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries a client-chosen key that makes movement
// recording safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// MovementMetrics records ledger activity for observability. Implemented by
// telemetry.BusinessMetrics; nil disables recording.
type MovementMetrics interface {
	RecordMovement(ctx context.Context, orgID uuid.UUID, movementType string)
	RecordAllocationFailure(ctx context.Context, orgID uuid.UUID, errorCode string)
}

// MovementProcessor is the slice of the movement service these endpoints
// consume. Satisfied by *inventoryapp.MovementService.
type MovementProcessor interface {
	ProcessMovement(ctx context.Context, orgID uuid.UUID, req inventoryapp.MovementRequest) (*inventoryapp.MovementResult, error)
	GetLedger(ctx context.Context, orgID uuid.UUID, materialCode string, filter shared.Filter) ([]material.StockTransaction, int64, error)
	GetBalance(ctx context.Context, orgID uuid.UUID, materialCode string) (ledger, cached decimal.Decimal, err error)
}

// MovementHandler handles stock movement and ledger API endpoints
type MovementHandler struct {
	BaseHandler
	movementService  MovementProcessor
	idempotencyStore shared.IdempotencyStore
	idempotencyTTL   time.Duration
	metrics          MovementMetrics
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movementService MovementProcessor) *MovementHandler {
	return &MovementHandler{
		movementService: movementService,
		idempotencyTTL:  shared.DefaultIdempotencyConfig().TTL,
	}
}

// WithIdempotencyStore enables Idempotency-Key handling on movement recording
func (h *MovementHandler) WithIdempotencyStore(store shared.IdempotencyStore) *MovementHandler {
	h.idempotencyStore = store
	return h
}

// WithMetrics enables business metric recording
func (h *MovementHandler) WithMetrics(metrics MovementMetrics) *MovementHandler {
	h.metrics = metrics
	return h
}

// RecordMovementRequest represents a request to append one stock movement
type RecordMovementRequest struct {
	MaterialCode   string  `json:"material_code" binding:"required,max=64"`
	Type           string  `json:"type" binding:"required,oneof=IN OUT_PROD OUT_LOSS ADJ"`
	Quantity       float64 `json:"quantity" binding:"required"`
	LotNumber      string  `json:"lot_number" binding:"max=64"`
	Supplier       string  `json:"supplier" binding:"max=255"`
	ExpirationDate string  `json:"expiration_date"`
	RelatedEntryID string  `json:"related_entry_id" binding:"max=64"`
	OperatorID     string  `json:"operator_id"`
	Note           string  `json:"note" binding:"max=500"`
	PickStrategy   string  `json:"pick_strategy" binding:"omitempty,oneof=FEFO FIFO"`
}

// Record appends one stock movement to the ledger.
// POST /movements
func (h *MovementHandler) Record(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := inventoryapp.MovementRequest{
		MaterialCode:   req.MaterialCode,
		Type:           material.MovementType(req.Type),
		Quantity:       toDecimal(req.Quantity),
		LotNumber:      req.LotNumber,
		Supplier:       req.Supplier,
		RelatedEntryID: req.RelatedEntryID,
		Note:           req.Note,
		PickStrategy:   material.LotPickStrategyType(req.PickStrategy),
	}

	if req.ExpirationDate != "" {
		expiry, err := parseDateTime(req.ExpirationDate)
		if err != nil {
			h.BadRequest(c, "Invalid expiration date format")
			return
		}
		appReq.ExpirationDate = &expiry
	}

	if req.OperatorID != "" {
		opID, err := uuid.Parse(req.OperatorID)
		if err != nil {
			h.BadRequest(c, "Invalid operator ID format")
			return
		}
		appReq.OperatorID = &opID
	}

	// Marked after validation so a malformed request never burns the key.
	// A replayed request with the same key must not append twice.
	var scopedKey string
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" && h.idempotencyStore != nil {
		scopedKey = fmt.Sprintf("movement:%s:%s", orgID, key)
		fresh, err := h.idempotencyStore.MarkProcessed(c.Request.Context(), scopedKey, h.idempotencyTTL)
		if err != nil {
			h.InternalError(c, "Idempotency check failed")
			return
		}
		if !fresh {
			h.Conflict(c, "Movement with this idempotency key was already recorded")
			return
		}
	}

	result, err := h.movementService.ProcessMovement(c.Request.Context(), orgID, appReq)
	if err != nil {
		// Nothing was appended, so the key must become usable again; a
		// client retrying after fixing the cause would otherwise see a
		// Conflict for a movement that never happened.
		if scopedKey != "" {
			if releaseErr := h.idempotencyStore.Release(c.Request.Context(), scopedKey); releaseErr != nil {
				h.InternalError(c, "Failed to release idempotency key")
				return
			}
		}
		h.recordFailure(c, orgID, err)
		h.HandleDomainError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordMovement(c.Request.Context(), orgID, result.MovementType.String())
	}
	h.Created(c, result)
}

// recordFailure counts allocation failures by error code
func (h *MovementHandler) recordFailure(c *gin.Context, orgID uuid.UUID, err error) {
	if h.metrics == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case "INSUFFICIENT_STOCK", "ALLOCATION_FAILED":
			h.metrics.RecordAllocationFailure(c.Request.Context(), orgID, domainErr.Code)
		}
	}
}

// Ledger retrieves the transaction history of one material, newest first.
// GET /materials/:code/ledger
func (h *MovementHandler) Ledger(c *gin.Context) {
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
	if movementType := c.Query("type"); movementType != "" {
		if !material.MovementType(movementType).IsValid() {
			h.BadRequest(c, "Invalid movement type filter")
			return
		}
		filter.Filters["movement_type"] = movementType
	}
	if from := c.Query("from"); from != "" {
		t, err := parseDateTime(from)
		if err != nil {
			h.BadRequest(c, "Invalid from date format")
			return
		}
		filter.Filters["from"] = t
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDateTime(to)
		if err != nil {
			h.BadRequest(c, "Invalid to date format")
			return
		}
		filter.Filters["to"] = t
	}

	txs, total, err := h.movementService.GetLedger(c.Request.Context(), orgID, code, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// Balance reports the ledger-derived balance of one material next to the
// cached column, so drift is visible without a support query.
// GET /materials/:code/balance
func (h *MovementHandler) Balance(c *gin.Context) {
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

	ledger, cached, err := h.movementService.GetBalance(c.Request.Context(), orgID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, BalanceData{
		MaterialCode:  code,
		LedgerBalance: ledger.String(),
		CachedBalance: cached.String(),
		InSync:        ledger.Equal(cached),
	})
}
