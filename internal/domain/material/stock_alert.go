package material

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// AlertType classifies a stock alert
type AlertType string

const (
	AlertTypeLowStock   AlertType = "LOW_STOCK"
	AlertTypeOutOfStock AlertType = "OUT_OF_STOCK"
)

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "OPEN"
	AlertStatusResolved AlertStatus = "RESOLVED"
)

// StockAlert is a persisted low-stock notification. At most one OPEN alert
// exists per material; repeated threshold crossings update the open alert
// instead of stacking duplicates.
type StockAlert struct {
	shared.BaseEntity
	OrgID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_alerts_org_material,priority:1"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_alerts_org_material,priority:2"`
	MaterialCode string          `gorm:"type:varchar(50);not null"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	AlertType    AlertType       `gorm:"type:varchar(20);not null"`
	Status       AlertStatus     `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ResolvedAt   *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (StockAlert) TableName() string {
	return "stock_alerts"
}

// NewStockAlert creates an open alert from a threshold event
func NewStockAlert(e *StockBelowMinimumEvent) *StockAlert {
	alertType := AlertTypeLowStock
	if !e.CurrentStock.IsPositive() {
		alertType = AlertTypeOutOfStock
	}
	return &StockAlert{
		BaseEntity:   shared.NewBaseEntity(),
		OrgID:        e.OrgID(),
		MaterialID:   e.MaterialID,
		MaterialCode: e.MaterialCode,
		MaterialName: e.MaterialName,
		AlertType:    alertType,
		Status:       AlertStatusOpen,
		CurrentStock: e.CurrentStock,
		MinStock:     e.MinStock,
	}
}

// Refresh updates an open alert with the latest stock level
func (a *StockAlert) Refresh(currentStock, minStock decimal.Decimal) {
	a.CurrentStock = currentStock
	a.MinStock = minStock
	if !currentStock.IsPositive() {
		a.AlertType = AlertTypeOutOfStock
	} else {
		a.AlertType = AlertTypeLowStock
	}
	a.UpdatedAt = time.Now()
}

// Resolve closes the alert once stock recovers above the threshold
func (a *StockAlert) Resolve() {
	now := time.Now()
	a.Status = AlertStatusResolved
	a.ResolvedAt = &now
	a.UpdatedAt = now
}

// IsOpen returns true while the alert is unresolved
func (a *StockAlert) IsOpen() bool {
	return a.Status == AlertStatusOpen
}
