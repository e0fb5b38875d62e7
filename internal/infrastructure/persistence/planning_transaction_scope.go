package persistence

import (
	"context"

	"gorm.io/gorm"

	appplan "github.com/moldshop/backend/internal/application/planning"
	"github.com/moldshop/backend/internal/domain/planning"
)

// GormPlanningTransactionScope implements the planning TransactionScope using
// GORM transactions. Order trees and their reservations commit atomically.
type GormPlanningTransactionScope struct {
	db *gorm.DB
}

// NewGormPlanningTransactionScope creates a new GormPlanningTransactionScope
func NewGormPlanningTransactionScope(db *gorm.DB) *GormPlanningTransactionScope {
	return &GormPlanningTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormPlanningTransactionScope) Execute(ctx context.Context, fn func(repos appplan.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPlanningRepositories{tx: tx})
	})
}

// gormPlanningRepositories provides access to the planning repositories
// within a transaction
type gormPlanningRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the production order repository scoped to the current transaction
func (r *gormPlanningRepositories) OrderRepo() planning.ProductionOrderRepository {
	return NewGormProductionOrderRepository(r.tx)
}

// ReservationRepo returns the reservation repository scoped to the current transaction
func (r *gormPlanningRepositories) ReservationRepo() planning.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

// Ensure GormPlanningTransactionScope implements TransactionScope
var _ appplan.TransactionScope = (*GormPlanningTransactionScope)(nil)

// Ensure gormPlanningRepositories implements TransactionalRepositories
var _ appplan.TransactionalRepositories = (*gormPlanningRepositories)(nil)
