package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormBOMRepository implements BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// FindByID finds a BOM version by ID with its items loaded
func (r *GormBOMRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.BillOfMaterials, error) {
	var bom planning.BillOfMaterials
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&bom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindActiveByProductCode returns the single active version with items loaded,
// or shared.ErrBOMNotFound
func (r *GormBOMRepository) FindActiveByProductCode(ctx context.Context, orgID uuid.UUID, productCode string) (*planning.BillOfMaterials, error) {
	var bom planning.BillOfMaterials
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("org_id = ? AND product_code = ? AND active = ?", orgID, productCode, true).
		First(&bom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrBOMNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindByProductCode returns every version of a product's BOM, newest first
func (r *GormBOMRepository) FindByProductCode(ctx context.Context, orgID uuid.UUID, productCode string) ([]planning.BillOfMaterials, error) {
	var boms []planning.BillOfMaterials
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("org_id = ? AND product_code = ?", orgID, productCode).
		Order("bom_version DESC").
		Find(&boms).Error; err != nil {
		return nil, err
	}
	return boms, nil
}

// Save creates or updates a BOM version with its items
func (r *GormBOMRepository) Save(ctx context.Context, bom *planning.BillOfMaterials) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(bom).Error
}

// Activate marks the given version active and deactivates every sibling
// version of the same product in one transaction
func (r *GormBOMRepository) Activate(ctx context.Context, orgID, bomID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bom planning.BillOfMaterials
		if err := tx.Where("org_id = ? AND id = ?", orgID, bomID).First(&bom).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&planning.BillOfMaterials{}).
			Where("org_id = ? AND product_code = ? AND id <> ?", orgID, bom.ProductCode, bomID).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Model(&planning.BillOfMaterials{}).
			Where("org_id = ? AND id = ?", orgID, bomID).
			Update("active", true).Error
	})
}

// Ensure GormBOMRepository implements BOMRepository
var _ planning.BOMRepository = (*GormBOMRepository)(nil)
