package planning

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// BOMService manages products and their bill-of-material versions
type BOMService struct {
	productRepo planning.ProductRepository
	bomRepo     planning.BOMRepository
	logger      *zap.Logger
}

// NewBOMService creates a new BOM service
func NewBOMService(
	productRepo planning.ProductRepository,
	bomRepo planning.BOMRepository,
	logger *zap.Logger,
) *BOMService {
	return &BOMService{
		productRepo: productRepo,
		bomRepo:     bomRepo,
		logger:      logger,
	}
}

// CreateProduct registers a new manufacturable product
func (s *BOMService) CreateProduct(ctx context.Context, orgID uuid.UUID, req CreateProductRequest) (*planning.Product, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, orgID, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	p, err := planning.NewProduct(orgID, req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	p.Description = req.Description

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("org_id", orgID.String()),
		zap.String("code", p.Code),
	)
	return p, nil
}

// GetProduct returns a product by code
func (s *BOMService) GetProduct(ctx context.Context, orgID uuid.UUID, code string) (*planning.Product, error) {
	return s.productRepo.FindByCode(ctx, orgID, code)
}

// ListProducts returns a page of products
func (s *BOMService) ListProducts(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]planning.Product, int64, error) {
	items, err := s.productRepo.FindAll(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CreateBOM creates a new BOM version for a product. The product must exist;
// component codes are free references checked at planning time.
func (s *BOMService) CreateBOM(ctx context.Context, orgID uuid.UUID, req CreateBOMRequest) (*planning.BillOfMaterials, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, orgID, strings.TrimSpace(req.ProductCode))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("BOM_NOT_FOUND", "Product does not exist: "+req.ProductCode)
	}

	version := req.Version
	if version == 0 {
		existing, err := s.bomRepo.FindByProductCode(ctx, orgID, req.ProductCode)
		if err != nil {
			return nil, err
		}
		version = len(existing) + 1
	}

	bom, err := planning.NewBillOfMaterials(orgID, req.ProductCode, version)
	if err != nil {
		return nil, err
	}
	bom.Notes = req.Notes
	for _, item := range req.Items {
		if err := bom.AddItem(item.ComponentCode, item.QuantityPerUnit, item.WastePercent); err != nil {
			return nil, err
		}
	}

	if req.Activate {
		if err := bom.Activate(); err != nil {
			return nil, err
		}
	}
	if err := s.bomRepo.Save(ctx, bom); err != nil {
		return nil, err
	}
	if req.Activate {
		if err := s.bomRepo.Activate(ctx, orgID, bom.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("bom version created",
		zap.String("org_id", orgID.String()),
		zap.String("product_code", bom.ProductCode),
		zap.Int("version", bom.BOMVersion),
		zap.Int("items", len(bom.Items)),
		zap.Bool("active", bom.Active),
	)
	return bom, nil
}

// ActivateBOM makes the given version the one MRP reads
func (s *BOMService) ActivateBOM(ctx context.Context, orgID, bomID uuid.UUID) error {
	bom, err := s.bomRepo.FindByID(ctx, orgID, bomID)
	if err != nil {
		return err
	}
	if err := bom.Activate(); err != nil {
		return err
	}
	return s.bomRepo.Activate(ctx, orgID, bom.ID)
}

// GetActiveBOM returns the active BOM version for a product code
func (s *BOMService) GetActiveBOM(ctx context.Context, orgID uuid.UUID, productCode string) (*planning.BillOfMaterials, error) {
	return s.bomRepo.FindActiveByProductCode(ctx, orgID, productCode)
}

// ListBOMVersions returns every BOM version of a product
func (s *BOMService) ListBOMVersions(ctx context.Context, orgID uuid.UUID, productCode string) ([]planning.BillOfMaterials, error) {
	return s.bomRepo.FindByProductCode(ctx, orgID, productCode)
}
