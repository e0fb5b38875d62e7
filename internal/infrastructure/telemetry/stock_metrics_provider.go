// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMetricsProvider implements StockMetricsProvider using GORM.
// It queries the materials and stock_alerts tables directly for aggregated metrics.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// GetOpenAlertCount returns the number of unresolved low-stock alerts for an org.
func (p *GormStockMetricsProvider) GetOpenAlertCount(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("stock_alerts").
		Where("org_id = ? AND status = ?", orgID, "OPEN").
		Count(&count).Error

	return count, err
}

// GetBelowMinimumCount returns the number of materials below their minimum threshold for an org.
func (p *GormStockMetricsProvider) GetBelowMinimumCount(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("materials").
		Where("org_id = ? AND active = ?", orgID, true).
		Where("min_stock > 0 AND current_stock < min_stock").
		Count(&count).Error

	return count, err
}

// GormOrgProvider implements OrgProvider using GORM. Orgs are not modeled as a
// table of their own, so the distinct org IDs present in the material master
// serve as the active set.
type GormOrgProvider struct {
	db *gorm.DB
}

// NewGormOrgProvider creates a new GormOrgProvider.
func NewGormOrgProvider(db *gorm.DB) *GormOrgProvider {
	return &GormOrgProvider{db: db}
}

// GetActiveOrgIDs returns all org IDs that own at least one material.
func (p *GormOrgProvider) GetActiveOrgIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("materials").
		Distinct("org_id").
		Find(&ids).Error

	return ids, err
}
