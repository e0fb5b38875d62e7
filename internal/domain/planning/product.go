package planning

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moldshop/backend/internal/domain/shared"
)

// Product marks an item code as manufacturable and anchors its bills of
// materials. Stock for a product is tracked as a material row sharing the
// same code; the product row itself carries no quantities.
type Product struct {
	shared.OrgAggregateRoot
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_org_code,priority:2"`
	Name        string `gorm:"type:varchar(200);not null"`
	Unit        string `gorm:"type:varchar(20);not null"`
	Description string `gorm:"type:varchar(500)"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(orgID uuid.UUID, code, name, unit string) (*Product, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Product unit cannot be empty")
	}

	return &Product{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Code:             code,
		Name:             name,
		Unit:             unit,
		Active:           true,
	}, nil
}

// Deactivate marks the product as no longer produced
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
