package material

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// Category classifies a raw material within the plant
type Category string

const (
	CategoryResin     Category = "RESIN"
	CategoryAdditive  Category = "ADDITIVE"
	CategoryColorant  Category = "COLORANT"
	CategoryPackaging Category = "PACKAGING"
	CategoryOther     Category = "OTHER"
)

// IsValid returns true if the category is a known value
func (c Category) IsValid() bool {
	switch c {
	case CategoryResin, CategoryAdditive, CategoryColorant, CategoryPackaging, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// Material is the aggregate root for a raw material or intermediate good.
//
// CurrentStock is a derived cache of the transaction ledger: it is only ever
// written by recomputing the signed sum of the material's transactions inside
// the same database transaction that appended to the ledger. Any other write
// path would let the cache drift from the source of truth.
type Material struct {
	shared.OrgAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_materials_org_code,priority:2"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	Category     Category        `gorm:"type:varchar(20);not null"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LeadTimeDays int             `gorm:"not null;default:0"`
	Location     string          `gorm:"type:varchar(100)"`
	Active       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new material
func NewMaterial(orgID uuid.UUID, code, name, unit string, category Category) (*Material, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Material unit cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown material category")
	}

	return &Material{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Code:             code,
		Name:             name,
		Unit:             unit,
		Category:         category,
		CurrentStock:     decimal.Zero,
		MinStock:         decimal.Zero,
		UnitCost:         decimal.Zero,
		Active:           true,
	}, nil
}

// SetMinStock sets the low-stock threshold
func (m *Material) SetMinStock(minStock decimal.Decimal) error {
	if minStock.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	m.MinStock = minStock
	m.UpdatedAt = time.Now()
	return nil
}

// SetUnitCost sets the standard unit cost
func (m *Material) SetUnitCost(unitCost decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	m.UnitCost = unitCost
	m.UpdatedAt = time.Now()
	return nil
}

// SetLeadTimeDays sets the procurement lead time in days
func (m *Material) SetLeadTimeDays(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_LEAD_TIME", "Lead time cannot be negative")
	}
	m.LeadTimeDays = days
	m.UpdatedAt = time.Now()
	return nil
}

// ApplyRecomputedStock replaces the cached stock level with the balance
// recomputed from the ledger and raises a low-stock event when the new level
// falls below the threshold.
func (m *Material) ApplyRecomputedStock(balance decimal.Decimal) {
	m.CurrentStock = balance
	m.UpdatedAt = time.Now()

	if m.IsBelowMinimum() {
		m.AddDomainEvent(NewStockBelowMinimumEvent(m))
	}
}

// IsBelowMinimum returns true if cached stock is below the configured threshold
func (m *Material) IsBelowMinimum() bool {
	if m.MinStock.IsZero() {
		return false
	}
	return m.CurrentStock.LessThan(m.MinStock)
}

// Deactivate marks the material as no longer in use
func (m *Material) Deactivate() {
	m.Active = false
	m.UpdatedAt = time.Now()
}
