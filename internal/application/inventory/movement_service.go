package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// MovementService records stock movements against the ledger. Every movement
// runs inside a single transaction scope: ledger append, lot updates and the
// balance recompute commit together or not at all.
type MovementService struct {
	txScope         TransactionScope
	eventPublisher  shared.EventPublisher
	strategyFactory *material.LotPickStrategyFactory
	logger          *zap.Logger
}

// NewMovementService creates a new movement service
func NewMovementService(
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *MovementService {
	return &MovementService{
		txScope:         txScope,
		eventPublisher:  eventPublisher,
		strategyFactory: material.NewLotPickStrategyFactory(),
		logger:          logger,
	}
}

// ProcessMovement validates and commits one stock movement for the given
// organization. On success the material's cached balance has been recomputed
// from the ledger and any threshold events have been published.
func (s *MovementService) ProcessMovement(ctx context.Context, orgID uuid.UUID, req MovementRequest) (*MovementResult, error) {
	if err := s.validateRequest(orgID, req); err != nil {
		return nil, err
	}

	var result *MovementResult
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		m, err := repos.MaterialRepo().FindByCode(ctx, orgID, strings.TrimSpace(req.MaterialCode))
		if err != nil {
			return err
		}

		var lines []MovementLine
		var createdLotID *uuid.UUID
		var depleted []shared.DomainEvent

		switch {
		case req.Type == material.MovementTypeIn:
			lines, createdLotID, err = s.processInbound(ctx, repos, m, req)
		case req.Type.IsOutbound() || (req.Type == material.MovementTypeAdj && req.Quantity.IsNegative()):
			lines, depleted, err = s.processOutbound(ctx, repos, m, req)
		default: // positive ADJ: a pure ledger correction, no lot involved
			lines, err = s.processAdjustmentUp(ctx, repos, m, req)
		}
		if err != nil {
			return err
		}

		// Recompute the cached balance from the ledger inside the same
		// transaction. The ledger sum is authoritative.
		balance, err := repos.TransactionRepo().SumSignedQuantity(ctx, orgID, m.ID)
		if err != nil {
			return err
		}
		m.ApplyRecomputedStock(balance)
		if err := repos.MaterialRepo().SaveWithLock(ctx, m); err != nil {
			return err
		}

		events = append(events, m.GetDomainEvents()...)
		m.ClearDomainEvents()
		events = append(events, depleted...)
		events = append(events, material.NewMovementRecordedEvent(m, req.Type, req.Quantity, req.RelatedEntryID))

		result = &MovementResult{
			MaterialID:     m.ID,
			MaterialCode:   m.Code,
			MovementType:   req.Type,
			Lines:          lines,
			NewBalance:     balance,
			CreatedLotID:   createdLotID,
			RelatedEntryID: req.RelatedEntryID,
			BelowMinimum:   m.IsBelowMinimum(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)

	s.logger.Info("stock movement recorded",
		zap.String("org_id", orgID.String()),
		zap.String("material_code", result.MaterialCode),
		zap.String("movement_type", result.MovementType.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("new_balance", result.NewBalance.String()),
		zap.Int("ledger_lines", len(result.Lines)),
	)
	return result, nil
}

// validateRequest checks the request shape before any repository access
func (s *MovementService) validateRequest(orgID uuid.UUID, req MovementRequest) error {
	if orgID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if strings.TrimSpace(req.MaterialCode) == "" {
		return shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if !req.Type.IsValid() {
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type: "+string(req.Type))
	}
	if req.Quantity.IsZero() {
		return shared.ErrInvalidQuantity
	}
	if req.Type != material.MovementTypeAdj && req.Quantity.IsNegative() {
		return shared.ErrInvalidQuantity
	}
	if req.Type == material.MovementTypeIn && strings.TrimSpace(req.LotNumber) == "" {
		return shared.ErrMissingLotNumber
	}
	if req.PickStrategy != "" && !req.PickStrategy.IsValid() {
		return shared.NewDomainError("INVALID_STRATEGY", "Unknown lot pick strategy: "+string(req.PickStrategy))
	}
	return nil
}

// processInbound creates the receiving lot and its ledger row
func (s *MovementService) processInbound(
	ctx context.Context,
	repos TransactionalRepositories,
	m *material.Material,
	req MovementRequest,
) ([]MovementLine, *uuid.UUID, error) {
	lot, err := material.NewStockLot(m.OrgID, m.ID, req.LotNumber, req.Quantity, req.Supplier, req.ExpirationDate)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.LotRepo().Create(ctx, lot); err != nil {
		return nil, nil, err
	}

	tx, err := material.NewStockTransaction(m.OrgID, m.ID, material.MovementTypeIn, req.Quantity, m.CurrentStock)
	if err != nil {
		return nil, nil, err
	}
	s.decorate(tx, req).WithLotID(lot.ID)
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return nil, nil, err
	}

	line := MovementLine{
		TransactionID: tx.ID,
		LotID:         tx.LotID,
		LotNumber:     lot.LotNumber,
		Quantity:      tx.Quantity,
		BalanceAfter:  tx.BalanceAfter,
	}
	return []MovementLine{line}, &lot.ID, nil
}

// processOutbound locks the material's lots, allocates against them and
// writes one ledger row per lot drawn. All rows of the movement share the
// request's RelatedEntryID so the consumption can be traced as one unit.
func (s *MovementService) processOutbound(
	ctx context.Context,
	repos TransactionalRepositories,
	m *material.Material,
	req MovementRequest,
) ([]MovementLine, []shared.DomainEvent, error) {
	need := req.Quantity.Abs()

	// Cheap precheck on the cached balance before touching lot rows.
	if m.CurrentStock.LessThan(need) {
		return nil, nil, insufficientStock(m, need, m.CurrentStock)
	}

	lots, err := repos.LotRepo().FindAllocatableForUpdate(ctx, m.OrgID, m.ID)
	if err != nil {
		return nil, nil, err
	}

	ok, available := material.ValidateLotAvailability(lots, need)
	if !ok {
		return nil, nil, insufficientStock(m, need, available)
	}

	strategy := s.strategyFactory.GetDefaultStrategy()
	if req.PickStrategy != "" {
		if strategy, err = s.strategyFactory.GetStrategy(req.PickStrategy); err != nil {
			return nil, nil, err
		}
	}

	plan, err := strategy.SelectLots(need, lots)
	if err != nil {
		return nil, nil, err
	}
	if !plan.FullyFulfilled {
		// Availability was validated above, so a shortfall here means the
		// selection itself went wrong.
		return nil, nil, shared.NewDomainError("ALLOCATION_FAILED",
			fmt.Sprintf("Allocation for %s left a shortfall of %s", m.Code, plan.Shortfall.String()))
	}

	lotPtrs := make([]*material.StockLot, len(lots))
	for i := range lots {
		lotPtrs[i] = &lots[i]
	}
	if err := material.ApplyLotPicks(lotPtrs, plan); err != nil {
		return nil, nil, err
	}
	if err := repos.LotRepo().UpdateBatch(ctx, lotPtrs); err != nil {
		return nil, nil, err
	}

	var depleted []shared.DomainEvent
	for _, lot := range lotPtrs {
		if lot.IsDepleted() {
			depleted = append(depleted, material.NewLotDepletedEvent(lot))
		}
	}

	lines := make([]MovementLine, 0, len(plan.Picks))
	txs := make([]*material.StockTransaction, 0, len(plan.Picks))
	running := m.CurrentStock
	for _, pick := range plan.Picks {
		tx, err := material.NewStockTransaction(m.OrgID, m.ID, req.Type, pick.Quantity.Neg(), running)
		if err != nil {
			return nil, nil, err
		}
		s.decorate(tx, req).WithLotID(pick.LotID)
		txs = append(txs, tx)
		running = tx.BalanceAfter

		lines = append(lines, MovementLine{
			TransactionID: tx.ID,
			LotID:         tx.LotID,
			LotNumber:     pick.LotNumber,
			Quantity:      tx.Quantity,
			BalanceAfter:  tx.BalanceAfter,
		})
	}
	if err := repos.TransactionRepo().CreateBatch(ctx, txs); err != nil {
		return nil, nil, err
	}

	return lines, depleted, nil
}

// processAdjustmentUp writes a single positive ADJ ledger row. Upward
// corrections are not tied to any lot: physical stock that reappears has no
// traceable lot identity.
func (s *MovementService) processAdjustmentUp(
	ctx context.Context,
	repos TransactionalRepositories,
	m *material.Material,
	req MovementRequest,
) ([]MovementLine, error) {
	tx, err := material.NewStockTransaction(m.OrgID, m.ID, material.MovementTypeAdj, req.Quantity, m.CurrentStock)
	if err != nil {
		return nil, err
	}
	s.decorate(tx, req)
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return nil, err
	}

	line := MovementLine{
		TransactionID: tx.ID,
		Quantity:      tx.Quantity,
		BalanceAfter:  tx.BalanceAfter,
	}
	return []MovementLine{line}, nil
}

// decorate attaches request metadata to a ledger row
func (s *MovementService) decorate(tx *material.StockTransaction, req MovementRequest) *material.StockTransaction {
	if req.RelatedEntryID != "" {
		tx.WithRelatedEntry(req.RelatedEntryID)
	}
	if req.OperatorID != nil {
		tx.WithOperator(*req.OperatorID)
	}
	if req.Note != "" {
		tx.WithNote(req.Note)
	}
	return tx
}

// publishEvents publishes collected domain events after commit. Publishing
// failures are logged and swallowed: alerting must never undo a movement.
func (s *MovementService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish movement events", zap.Error(err))
	}
}

// GetLedger returns a page of a material's ledger rows
func (s *MovementService) GetLedger(ctx context.Context, orgID uuid.UUID, materialCode string, filter shared.Filter) ([]material.StockTransaction, int64, error) {
	var rows []material.StockTransaction
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		m, err := repos.MaterialRepo().FindByCode(ctx, orgID, materialCode)
		if err != nil {
			return err
		}
		if rows, err = repos.TransactionRepo().FindByMaterial(ctx, orgID, m.ID, filter); err != nil {
			return err
		}
		total, err = repos.TransactionRepo().CountByMaterial(ctx, orgID, m.ID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetBalance returns the authoritative ledger balance and the cached value
// for a material. The two are equal unless something outside the movement
// path wrote the cache.
func (s *MovementService) GetBalance(ctx context.Context, orgID uuid.UUID, materialCode string) (ledger, cached decimal.Decimal, err error) {
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		m, err := repos.MaterialRepo().FindByCode(ctx, orgID, materialCode)
		if err != nil {
			return err
		}
		cached = m.CurrentStock
		ledger, err = repos.TransactionRepo().SumSignedQuantity(ctx, orgID, m.ID)
		return err
	})
	return ledger, cached, err
}

func insufficientStock(m *material.Material, requested, available decimal.Decimal) error {
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock of %s (%s): requested %s, available %s",
			m.Name, m.Code, requested.String(), available.String()))
}
