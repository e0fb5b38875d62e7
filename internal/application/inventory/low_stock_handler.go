package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// StockAlertNotifier is the interface for pushing stock alerts to an outside
// channel (in-app, email, messenger). Failures are logged and swallowed.
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert *material.StockAlert) error
}

// LowStockHandler reacts to StockBelowMinimum events by persisting a
// deduplicated alert row, and to MovementRecorded events by resolving open
// alerts once stock recovers. It runs on the event bus, decoupled from the
// movement transaction: a failing alert never fails a movement.
type LowStockHandler struct {
	alertRepo material.StockAlertRepository
	notifier  StockAlertNotifier
	logger    *zap.Logger
}

// NewLowStockHandler creates a new low-stock event handler
func NewLowStockHandler(alertRepo material.StockAlertRepository, logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{
		alertRepo: alertRepo,
		logger:    logger,
	}
}

// WithNotifier sets the notifier for pushing alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{material.EventTypeStockBelowMinimum, material.EventTypeMovementRecorded}
}

// Handle processes threshold and movement events
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *material.StockBelowMinimumEvent:
		return h.handleBelowMinimum(ctx, e)
	case *material.MovementRecordedEvent:
		return h.handleMovementRecorded(ctx, e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// handleBelowMinimum upserts the single open alert for the material
func (h *LowStockHandler) handleBelowMinimum(ctx context.Context, e *material.StockBelowMinimumEvent) error {
	h.logger.Warn("stock below minimum",
		zap.String("org_id", e.OrgID().String()),
		zap.String("material_code", e.MaterialCode),
		zap.String("current_stock", e.CurrentStock.String()),
		zap.String("min_stock", e.MinStock.String()),
	)

	open, err := h.alertRepo.FindOpenByMaterial(ctx, e.OrgID(), e.MaterialID)
	switch {
	case err == nil && open != nil:
		// An open alert already exists: refresh it instead of stacking a
		// duplicate for every movement below the threshold.
		open.Refresh(e.CurrentStock, e.MinStock)
		if err := h.alertRepo.Update(ctx, open); err != nil {
			return err
		}
		return nil
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return err
	}

	alert := material.NewStockAlert(e)
	if err := h.alertRepo.Create(ctx, alert); err != nil {
		return err
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send stock alert",
				zap.String("material_code", e.MaterialCode),
				zap.Error(err),
			)
		}
	}
	return nil
}

// handleMovementRecorded resolves an open alert once the balance recovers
func (h *LowStockHandler) handleMovementRecorded(ctx context.Context, e *material.MovementRecordedEvent) error {
	open, err := h.alertRepo.FindOpenByMaterial(ctx, e.OrgID(), e.MaterialID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if open == nil || e.NewBalance.LessThan(open.MinStock) {
		return nil
	}

	open.Resolve()
	if err := h.alertRepo.Update(ctx, open); err != nil {
		return err
	}
	h.logger.Info("stock alert resolved",
		zap.String("material_code", e.MaterialCode),
		zap.String("new_balance", e.NewBalance.String()),
	)
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier logs alerts instead of pushing them anywhere.
// Used in development and as the default wiring.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert *material.StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", string(alert.AlertType)),
		zap.String("material_code", alert.MaterialCode),
		zap.String("material_name", alert.MaterialName),
		zap.String("current_stock", alert.CurrentStock.String()),
		zap.String("min_stock", alert.MinStock.String()),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
