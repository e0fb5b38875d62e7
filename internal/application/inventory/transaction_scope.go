package inventory

import (
	"context"

	"github.com/moldshop/backend/internal/domain/material"
)

// TransactionScope provides transactional access to the material repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Movements depend on this: the lot row locks taken by
// FindAllocatableForUpdate only hold for the lifetime of the scope.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the material repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - MaterialRepo: repository for the Material aggregate root. CurrentStock
//     writes only happen here, from ledger recomputes.
//   - LotRepo: lots are deliberately independent of the Material aggregate so
//     the allocator can lock and update individual rows.
//   - TransactionRepo: append-only access to the stock ledger.
type TransactionalRepositories interface {
	// MaterialRepo returns the material repository scoped to the current transaction
	MaterialRepo() material.MaterialRepository
	// LotRepo returns the stock lot repository scoped to the current transaction
	LotRepo() material.StockLotRepository
	// TransactionRepo returns the stock transaction repository scoped to the current transaction
	TransactionRepo() material.StockTransactionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests running against in-memory repositories.
type NoOpTransactionScope struct {
	materialRepo    material.MaterialRepository
	lotRepo         material.StockLotRepository
	transactionRepo material.StockTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	materialRepo material.MaterialRepository,
	lotRepo material.StockLotRepository,
	transactionRepo material.StockTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		materialRepo:    materialRepo,
		lotRepo:         lotRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MaterialRepo returns the material repository.
func (s *NoOpTransactionScope) MaterialRepo() material.MaterialRepository {
	return s.materialRepo
}

// LotRepo returns the stock lot repository.
func (s *NoOpTransactionScope) LotRepo() material.StockLotRepository {
	return s.lotRepo
}

// TransactionRepo returns the stock transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() material.StockTransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
