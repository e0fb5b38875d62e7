package planning

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *ProductionOrder {
	t.Helper()
	order, err := NewProductionOrder(uuid.New(), "MO-2026-0001", "CRATE", decimal.NewFromFloat(500))
	require.NoError(t, err)
	return order
}

func TestProductionOrderLifecycle(t *testing.T) {
	t.Run("New order is planned and raises created event", func(t *testing.T) {
		order := newTestOrder(t)
		assert.Equal(t, OrderStatusPlanned, order.Status)

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*OrderCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "MO-2026-0001", created.OrderNumber)
		assert.False(t, created.IsChild)
	})

	t.Run("Planned to in progress to completed", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Start())
		assert.Equal(t, OrderStatusInProgress, order.Status)
		assert.NotNil(t, order.StartedAt)

		require.NoError(t, order.Complete())
		assert.Equal(t, OrderStatusCompleted, order.Status)
		assert.NotNil(t, order.CompletedAt)
	})

	t.Run("Cannot start twice", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Start())
		assert.Error(t, order.Start())
	})

	t.Run("Cannot complete a planned order", func(t *testing.T) {
		order := newTestOrder(t)
		assert.Error(t, order.Complete())
	})

	t.Run("Only planned orders can be cancelled", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Cancel())
		assert.Equal(t, OrderStatusCancelled, order.Status)

		running := newTestOrder(t)
		require.NoError(t, running.Start())
		assert.Error(t, running.Cancel())
	})

	t.Run("Terminal statuses are terminal", func(t *testing.T) {
		assert.True(t, OrderStatusCompleted.IsTerminal())
		assert.True(t, OrderStatusCancelled.IsTerminal())
		assert.False(t, OrderStatusPlanned.IsTerminal())
		assert.False(t, OrderStatusInProgress.IsTerminal())
	})

	t.Run("Rejects invalid construction", func(t *testing.T) {
		_, err := NewProductionOrder(uuid.Nil, "MO-1", "CRATE", decimal.NewFromFloat(1))
		assert.Error(t, err)
		_, err = NewProductionOrder(uuid.New(), "", "CRATE", decimal.NewFromFloat(1))
		assert.Error(t, err)
		_, err = NewProductionOrder(uuid.New(), "MO-1", "", decimal.NewFromFloat(1))
		assert.Error(t, err)
		_, err = NewProductionOrder(uuid.New(), "MO-1", "CRATE", decimal.Zero)
		assert.Error(t, err)
	})
}

func TestMaterialReservation(t *testing.T) {
	orgID := uuid.New()
	orderID := uuid.New()

	t.Run("Pending reservation can be consumed once", func(t *testing.T) {
		r, err := NewMaterialReservation(orgID, orderID, "PP", decimal.NewFromFloat(25))
		require.NoError(t, err)
		assert.Equal(t, ReservationStatusPending, r.Status)

		require.NoError(t, r.Consume())
		assert.Equal(t, ReservationStatusConsumed, r.Status)
		assert.NotNil(t, r.ConsumedAt)
		assert.Error(t, r.Consume())
	})

	t.Run("Pending reservation can be cancelled", func(t *testing.T) {
		r, err := NewMaterialReservation(orgID, orderID, "PP", decimal.NewFromFloat(25))
		require.NoError(t, err)
		require.NoError(t, r.Cancel())
		assert.Error(t, r.Consume())
	})

	t.Run("Rejects invalid construction", func(t *testing.T) {
		_, err := NewMaterialReservation(uuid.Nil, orderID, "PP", decimal.NewFromFloat(1))
		assert.Error(t, err)
		_, err = NewMaterialReservation(orgID, uuid.Nil, "PP", decimal.NewFromFloat(1))
		assert.Error(t, err)
		_, err = NewMaterialReservation(orgID, orderID, "", decimal.NewFromFloat(1))
		assert.Error(t, err)
		_, err = NewMaterialReservation(orgID, orderID, "PP", decimal.NewFromFloat(-1))
		assert.Error(t, err)
	})
}
