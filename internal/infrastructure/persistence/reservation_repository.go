package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moldshop/backend/internal/domain/planning"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Create inserts a new reservation
func (r *GormReservationRepository) Create(ctx context.Context, res *planning.MaterialReservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// CreateBatch inserts multiple reservations
func (r *GormReservationRepository) CreateBatch(ctx context.Context, rs []*planning.MaterialReservation) error {
	if len(rs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rs).Error
}

// FindByOrder returns every reservation of an order
func (r *GormReservationRepository) FindByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]planning.MaterialReservation, error) {
	var out []planning.MaterialReservation
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND order_id = ?", orgID, orderID).
		Order("component_code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindPendingByOrder returns the pending reservations of an order
func (r *GormReservationRepository) FindPendingByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]planning.MaterialReservation, error) {
	var out []planning.MaterialReservation
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND order_id = ? AND status = ?", orgID, orderID, planning.ReservationStatusPending).
		Order("component_code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update saves changes to a reservation
func (r *GormReservationRepository) Update(ctx context.Context, res *planning.MaterialReservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// Ensure GormReservationRepository implements ReservationRepository
var _ planning.ReservationRepository = (*GormReservationRepository)(nil)
