package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

// MaterialService manages the material master data and lot administration.
// Stock levels are never touched here; only movements change stock.
type MaterialService struct {
	materialRepo material.MaterialRepository
	lotRepo      material.StockLotRepository
	alertRepo    material.StockAlertRepository
	logger       *zap.Logger
}

// NewMaterialService creates a new material service
func NewMaterialService(
	materialRepo material.MaterialRepository,
	lotRepo material.StockLotRepository,
	alertRepo material.StockAlertRepository,
	logger *zap.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		lotRepo:      lotRepo,
		alertRepo:    alertRepo,
		logger:       logger,
	}
}

// CreateMaterial registers a new material
func (s *MaterialService) CreateMaterial(ctx context.Context, orgID uuid.UUID, req CreateMaterialRequest) (*material.Material, error) {
	existing, err := s.materialRepo.FindByCode(ctx, orgID, strings.TrimSpace(req.Code))
	if err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	m, err := material.NewMaterial(orgID, req.Code, req.Name, req.Unit, req.Category)
	if err != nil {
		return nil, err
	}
	if err := m.SetMinStock(req.MinStock); err != nil {
		return nil, err
	}
	if err := m.SetUnitCost(req.UnitCost); err != nil {
		return nil, err
	}
	if err := m.SetLeadTimeDays(req.LeadTimeDays); err != nil {
		return nil, err
	}
	m.Location = req.Location

	if err := s.materialRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("material created",
		zap.String("org_id", orgID.String()),
		zap.String("code", m.Code),
		zap.String("category", m.Category.String()),
	)
	return m, nil
}

// UpdateMaterial changes planning fields of an existing material
func (s *MaterialService) UpdateMaterial(ctx context.Context, orgID uuid.UUID, code string, req UpdateMaterialRequest) (*material.Material, error) {
	m, err := s.materialRepo.FindByCode(ctx, orgID, code)
	if err != nil {
		return nil, err
	}

	if req.MinStock != nil {
		if err := m.SetMinStock(*req.MinStock); err != nil {
			return nil, err
		}
	}
	if req.UnitCost != nil {
		if err := m.SetUnitCost(*req.UnitCost); err != nil {
			return nil, err
		}
	}
	if req.LeadTimeDays != nil {
		if err := m.SetLeadTimeDays(*req.LeadTimeDays); err != nil {
			return nil, err
		}
	}
	if req.Location != nil {
		m.Location = *req.Location
	}

	if err := s.materialRepo.SaveWithLock(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMaterial returns a material by code
func (s *MaterialService) GetMaterial(ctx context.Context, orgID uuid.UUID, code string) (*material.Material, error) {
	return s.materialRepo.FindByCode(ctx, orgID, code)
}

// ListMaterials returns a page of materials
func (s *MaterialService) ListMaterials(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]material.Material, int64, error) {
	items, err := s.materialRepo.FindAll(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.materialRepo.Count(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListLots returns a page of a material's lots
func (s *MaterialService) ListLots(ctx context.Context, orgID uuid.UUID, materialCode string, filter shared.Filter) ([]material.StockLot, error) {
	m, err := s.materialRepo.FindByCode(ctx, orgID, materialCode)
	if err != nil {
		return nil, err
	}
	return s.lotRepo.FindByMaterial(ctx, orgID, m.ID, filter)
}

// BlockLot quarantines a lot so the allocator skips it
func (s *MaterialService) BlockLot(ctx context.Context, orgID, lotID uuid.UUID) (*material.StockLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, orgID, lotID)
	if err != nil {
		return nil, err
	}
	lot.Block()
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, err
	}
	s.logger.Warn("stock lot blocked",
		zap.String("org_id", orgID.String()),
		zap.String("lot_number", lot.LotNumber),
	)
	return lot, nil
}

// ApproveLot releases a quarantined lot for consumption
func (s *MaterialService) ApproveLot(ctx context.Context, orgID, lotID uuid.UUID) (*material.StockLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, orgID, lotID)
	if err != nil {
		return nil, err
	}
	lot.Approve()
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// ListAlerts returns a page of stock alerts
func (s *MaterialService) ListAlerts(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]material.StockAlert, int64, error) {
	alerts, err := s.alertRepo.FindAll(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.alertRepo.Count(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// ListBelowMinimum returns all materials currently under their threshold
func (s *MaterialService) ListBelowMinimum(ctx context.Context, orgID uuid.UUID) ([]material.Material, error) {
	return s.materialRepo.FindBelowMinimum(ctx, orgID)
}
