package planning

import (
	"context"

	"github.com/moldshop/backend/internal/domain/planning"
)

// TransactionScope provides transactional access to the order-side
// repositories. Creating orders from a plan writes the whole order tree and
// its reservations in one transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the planning repositories
// within a transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the production order repository scoped to the current transaction
	OrderRepo() planning.ProductionOrderRepository
	// ReservationRepo returns the reservation repository scoped to the current transaction
	ReservationRepo() planning.ReservationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests running against in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo       planning.ProductionOrderRepository
	reservationRepo planning.ReservationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo planning.ProductionOrderRepository,
	reservationRepo planning.ReservationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:       orderRepo,
		reservationRepo: reservationRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the production order repository.
func (s *NoOpTransactionScope) OrderRepo() planning.ProductionOrderRepository {
	return s.orderRepo
}

// ReservationRepo returns the reservation repository.
func (s *NoOpTransactionScope) ReservationRepo() planning.ReservationRepository {
	return s.reservationRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
