package planning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/shared"
)

// BillOfMaterials is one version of a product's recipe. A product may carry
// many versions but at most one is active; the MRP engine only ever reads
// the active one.
type BillOfMaterials struct {
	shared.OrgAggregateRoot
	ProductCode string    `gorm:"type:varchar(50);not null;index:idx_boms_org_product,priority:2"`
	BOMVersion  int       `gorm:"column:bom_version;not null;default:1"`
	Active      bool      `gorm:"not null;default:false;index"`
	Notes       string    `gorm:"type:varchar(500)"`
	Items       []BOMItem `gorm:"foreignKey:BOMID"`
}

// TableName returns the table name for GORM
func (BillOfMaterials) TableName() string {
	return "bill_of_materials"
}

// BOMItem is a single component line of a bill of materials. ComponentCode
// may name a raw material or another product (a sub-assembly).
type BOMItem struct {
	shared.BaseEntity
	BOMID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentCode   string          `gorm:"type:varchar(50);not null"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	WastePercent    decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Position        int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BOMItem) TableName() string {
	return "bom_items"
}

// NewBillOfMaterials creates a new BOM version for a product
func NewBillOfMaterials(orgID uuid.UUID, productCode string, version int) (*BillOfMaterials, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if version < 1 {
		return nil, shared.NewDomainError("INVALID_VERSION", "BOM version must be at least 1")
	}

	return &BillOfMaterials{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ProductCode:      productCode,
		BOMVersion:       version,
		Active:           false,
		Items:            make([]BOMItem, 0),
	}, nil
}

// AddItem appends a component line to the BOM
func (b *BillOfMaterials) AddItem(componentCode string, quantityPerUnit, wastePercent decimal.Decimal) error {
	componentCode = strings.TrimSpace(componentCode)
	if componentCode == "" {
		return shared.NewDomainError("INVALID_COMPONENT", "Component code cannot be empty")
	}
	if componentCode == b.ProductCode {
		return shared.ErrCycleDetected
	}
	if quantityPerUnit.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if wastePercent.IsNegative() {
		return shared.NewDomainError("INVALID_WASTE", "Waste percentage cannot be negative")
	}
	for _, item := range b.Items {
		if item.ComponentCode == componentCode {
			return shared.NewDomainError("DUPLICATE_COMPONENT", "Component already present: "+componentCode)
		}
	}

	b.Items = append(b.Items, BOMItem{
		BaseEntity:      shared.NewBaseEntity(),
		BOMID:           b.ID,
		ComponentCode:   componentCode,
		QuantityPerUnit: quantityPerUnit,
		WastePercent:    wastePercent,
		Position:        len(b.Items),
	})
	b.UpdatedAt = time.Now()
	return nil
}

// Activate marks this version as the one MRP reads. The repository is
// responsible for deactivating sibling versions in the same write.
func (b *BillOfMaterials) Activate() error {
	if len(b.Items) == 0 {
		return shared.NewDomainError("EMPTY_BOM", "Cannot activate a BOM without components")
	}
	b.Active = true
	b.UpdatedAt = time.Now()
	return nil
}

// Deactivate retires this version
func (b *BillOfMaterials) Deactivate() {
	b.Active = false
	b.UpdatedAt = time.Now()
}

// EffectiveQuantityPerUnit returns the per-unit component need including the
// waste allowance
func (i *BOMItem) EffectiveQuantityPerUnit() decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(i.WastePercent.Div(decimal.NewFromInt(100)))
	return i.QuantityPerUnit.Mul(factor)
}

// GrossRequirement returns the component quantity needed to produce the given
// parent quantity
func (i *BOMItem) GrossRequirement(parentQuantity decimal.Decimal) decimal.Decimal {
	return i.EffectiveQuantityPerUnit().Mul(parentQuantity)
}
