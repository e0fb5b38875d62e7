package planning

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// RepositoryPlanningGateway adapts the material and planning repositories to
// the read-only view the MRP engine needs. A code is manufacturable when a
// product row exists for it; its stock snapshot comes from the material row
// sharing the same code.
type RepositoryPlanningGateway struct {
	materialRepo material.MaterialRepository
	productRepo  planning.ProductRepository
	bomRepo      planning.BOMRepository
}

// NewRepositoryPlanningGateway creates a new gateway over the repositories
func NewRepositoryPlanningGateway(
	materialRepo material.MaterialRepository,
	productRepo planning.ProductRepository,
	bomRepo planning.BOMRepository,
) *RepositoryPlanningGateway {
	return &RepositoryPlanningGateway{
		materialRepo: materialRepo,
		productRepo:  productRepo,
		bomRepo:      bomRepo,
	}
}

// ComponentInfo resolves an item code against both masters. Codes unknown to
// both sides resolve to a zero-stock, non-manufacturable component so a BOM
// may reference a material that has not been received yet.
func (g *RepositoryPlanningGateway) ComponentInfo(ctx context.Context, orgID uuid.UUID, code string) (*planning.ComponentInfo, error) {
	manufacturable, err := g.productRepo.ExistsByCode(ctx, orgID, code)
	if err != nil {
		return nil, err
	}

	m, err := g.materialRepo.FindByCode(ctx, orgID, code)
	switch {
	case err == nil:
		return &planning.ComponentInfo{
			Code:           m.Code,
			Name:           m.Name,
			Unit:           m.Unit,
			AvailableStock: m.CurrentStock,
			LeadTimeDays:   m.LeadTimeDays,
			Manufacturable: manufacturable,
		}, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if manufacturable {
		p, err := g.productRepo.FindByCode(ctx, orgID, code)
		if err != nil {
			return nil, err
		}
		return &planning.ComponentInfo{
			Code:           p.Code,
			Name:           p.Name,
			Unit:           p.Unit,
			AvailableStock: decimal.Zero,
			Manufacturable: true,
		}, nil
	}

	return &planning.ComponentInfo{
		Code:           code,
		Name:           code,
		AvailableStock: decimal.Zero,
	}, nil
}

// ActiveBOM returns the active BOM version for a product code
func (g *RepositoryPlanningGateway) ActiveBOM(ctx context.Context, orgID uuid.UUID, productCode string) (*planning.BillOfMaterials, error) {
	return g.bomRepo.FindActiveByProductCode(ctx, orgID, productCode)
}

var _ planning.PlanningGateway = (*RepositoryPlanningGateway)(nil)
