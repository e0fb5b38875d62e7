package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/planning"
	"github.com/moldshop/backend/internal/domain/shared"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID within an organization
func (r *GormProductRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.Product, error) {
	var p planning.Product
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCode finds a product by its code within an organization
func (r *GormProductRepository) FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*planning.Product, error) {
	var p planning.Product
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAll returns a page of products
func (r *GormProductRepository) FindAll(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]planning.Product, error) {
	var items []planning.Product
	query := r.db.WithContext(ctx).Model(&planning.Product{}).Where("org_id = ?", orgID)
	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "search":
			if s, ok := value.(string); ok && s != "" {
				pattern := "%" + s + "%"
				query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
			}
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, ProductSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("code ASC")
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts products for an organization
func (r *GormProductRepository) Count(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&planning.Product{}).Where("org_id = ?", orgID)
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *planning.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ExistsByCode reports whether a product row makes the code manufacturable
func (r *GormProductRepository) ExistsByCode(ctx context.Context, orgID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&planning.Product{}).
		Where("org_id = ? AND code = ?", orgID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ planning.ProductRepository = (*GormProductRepository)(nil)
