package planning

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/domain/planning"
)

// MRPService runs requirement explosions. Simulations are pure reads over the
// stock snapshot; nothing is reserved or locked.
type MRPService struct {
	engine *planning.MRPEngine
	logger *zap.Logger
}

// NewMRPService creates a new MRP service
func NewMRPService(gateway planning.PlanningGateway, logger *zap.Logger) *MRPService {
	return &MRPService{
		engine: planning.NewMRPEngine(gateway),
		logger: logger,
	}
}

// Simulate explodes the demand into a plan tree without creating orders
func (s *MRPService) Simulate(ctx context.Context, orgID uuid.UUID, req SimulatePlanRequest) (*planning.MRPPlanItem, error) {
	plan, err := s.engine.Explode(ctx, orgID, req.ProductCode, req.Quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("mrp simulation completed",
		zap.String("org_id", orgID.String()),
		zap.String("product_code", plan.Code),
		zap.String("quantity", req.Quantity.String()),
		zap.Int("nodes", plan.CountNodes()),
		zap.Bool("unresolved", plan.HasUnresolved()),
	)
	return plan, nil
}
