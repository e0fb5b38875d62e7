// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the inventory and planning core.
// It tracks ledger activity, allocation outcomes, planning runs, and stock health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	movementRecordedTotal *Counter
	allocationFailedTotal *Counter
	orderCreatedTotal     *Counter
	planSimulatedTotal    *Counter

	// Gauge metrics (point-in-time values)
	openAlertCount    *Gauge
	belowMinimumCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides stock health data for periodic metrics
// collection. This interface allows the telemetry layer to query stock state
// without depending on the material domain directly.
type StockMetricsProvider interface {
	// GetOpenAlertCount returns the number of unresolved low-stock alerts for an org
	GetOpenAlertCount(ctx context.Context, orgID uuid.UUID) (int64, error)

	// GetBelowMinimumCount returns the number of materials below their minimum threshold for an org
	GetBelowMinimumCount(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StockProvider   StockMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	var err error

	// Ledger metrics
	bm.movementRecordedTotal, err = NewCounter(
		cfg.Meter,
		"moldshop_movement_recorded_total",
		"Total number of stock movements recorded in the ledger",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	bm.allocationFailedTotal, err = NewCounter(
		cfg.Meter,
		"moldshop_allocation_failed_total",
		"Total number of lot allocations rejected",
		"{allocations}",
	)
	if err != nil {
		return nil, err
	}

	// Planning metrics
	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"moldshop_production_order_created_total",
		"Total number of production orders created",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.planSimulatedTotal, err = NewCounter(
		cfg.Meter,
		"moldshop_mrp_plan_total",
		"Total number of MRP plan explosions",
		"{plans}",
	)
	if err != nil {
		return nil, err
	}

	// Stock health gauge metrics
	bm.openAlertCount, err = NewGauge(
		cfg.Meter,
		"moldshop_open_alert_count",
		"Number of unresolved low-stock alerts",
		"{alerts}",
	)
	if err != nil {
		return nil, err
	}

	bm.belowMinimumCount, err = NewGauge(
		cfg.Meter,
		"moldshop_below_minimum_count",
		"Number of materials below their minimum stock threshold",
		"{materials}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordMovement records a committed stock movement.
// This should be called from the application layer after the ledger entry commits.
func (bm *BusinessMetrics) RecordMovement(ctx context.Context, orgID uuid.UUID, movementType string) {
	bm.movementRecordedTotal.Inc(ctx,
		AttrOrgID.String(orgID.String()),
		AttrMovementType.String(movementType),
	)
}

// RecordAllocationFailure records a rejected lot allocation.
// The errorCode distinguishes insufficient stock from other allocation failures.
func (bm *BusinessMetrics) RecordAllocationFailure(ctx context.Context, orgID uuid.UUID, errorCode string) {
	bm.allocationFailedTotal.Inc(ctx,
		AttrOrgID.String(orgID.String()),
		AttrErrorCode.String(errorCode),
	)
}

// =============================================================================
// Planning Metrics
// =============================================================================

// RecordOrderCreated records a production order creation.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, orgID uuid.UUID, productCode string) {
	bm.orderCreatedTotal.Inc(ctx,
		AttrOrgID.String(orgID.String()),
		AttrProductCode.String(productCode),
	)
}

// RecordPlanSimulated records a completed MRP plan explosion.
func (bm *BusinessMetrics) RecordPlanSimulated(ctx context.Context, orgID uuid.UUID, productCode string) {
	bm.planSimulatedTotal.Inc(ctx,
		AttrOrgID.String(orgID.String()),
		AttrProductCode.String(productCode),
	)
}

// =============================================================================
// Stock Health Metrics
// =============================================================================

// RecordOpenAlertCount records the number of unresolved low-stock alerts.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenAlertCount(ctx context.Context, orgID uuid.UUID, count int64) {
	bm.openAlertCount.Record(ctx, count,
		AttrOrgID.String(orgID.String()),
	)
}

// RecordBelowMinimumCount records the number of materials below minimum stock.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordBelowMinimumCount(ctx context.Context, orgID uuid.UUID, count int64) {
	bm.belowMinimumCount.Record(ctx, count,
		AttrOrgID.String(orgID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// OrgProvider provides org IDs for periodic metrics collection.
type OrgProvider interface {
	GetActiveOrgIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects stock health metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, orgProvider OrgProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, orgProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, orgProvider OrgProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectStockMetrics(ctx, orgProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectStockMetrics(ctx, orgProvider)
		}
	}
}

// collectStockMetrics collects stock health gauge metrics for all orgs.
func (bm *BusinessMetrics) collectStockMetrics(ctx context.Context, orgProvider OrgProvider) {
	if bm.stockProvider == nil {
		bm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	orgIDs, err := orgProvider.GetActiveOrgIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get org IDs for metrics collection", zap.Error(err))
		return
	}

	for _, orgID := range orgIDs {
		bm.collectOrgStockMetrics(ctx, orgID)
	}
}

// collectOrgStockMetrics collects stock health metrics for a single org.
func (bm *BusinessMetrics) collectOrgStockMetrics(ctx context.Context, orgID uuid.UUID) {
	openAlerts, err := bm.stockProvider.GetOpenAlertCount(ctx, orgID)
	if err != nil {
		bm.logger.Warn("Failed to get open alert count for org",
			zap.String("org_id", orgID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOpenAlertCount(ctx, orgID, openAlerts)
	}

	belowMin, err := bm.stockProvider.GetBelowMinimumCount(ctx, orgID)
	if err != nil {
		bm.logger.Warn("Failed to get below-minimum count for org",
			zap.String("org_id", orgID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordBelowMinimumCount(ctx, orgID, belowMin)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
