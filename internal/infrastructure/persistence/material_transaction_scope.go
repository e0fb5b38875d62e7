package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/moldshop/backend/internal/application/inventory"
	"github.com/moldshop/backend/internal/domain/material"
)

// GormTransactionScope implements the inventory TransactionScope using GORM
// transactions. Movements depend on it: the row locks taken by
// FindAllocatableForUpdate hold until the scope commits or rolls back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to the material repositories
// within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// MaterialRepo returns the material repository scoped to the current transaction
func (r *gormTransactionalRepositories) MaterialRepo() material.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

// LotRepo returns the stock lot repository scoped to the current transaction
func (r *gormTransactionalRepositories) LotRepo() material.StockLotRepository {
	return NewGormStockLotRepository(r.tx)
}

// TransactionRepo returns the stock transaction repository scoped to the current transaction
func (r *gormTransactionalRepositories) TransactionRepo() material.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
