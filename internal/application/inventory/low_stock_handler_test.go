package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moldshop/backend/internal/domain/material"
	"github.com/moldshop/backend/internal/domain/shared"
)

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]*material.StockAlert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[uuid.UUID]*material.StockAlert)}
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *material.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *alert
	r.alerts[alert.ID] = &cp
	return nil
}

func (r *fakeAlertRepo) Update(_ context.Context, alert *material.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *alert
	r.alerts[alert.ID] = &cp
	return nil
}

func (r *fakeAlertRepo) FindOpenByMaterial(_ context.Context, orgID, materialID uuid.UUID) (*material.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.OrgID == orgID && a.MaterialID == materialID && a.IsOpen() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAlertRepo) FindAll(_ context.Context, orgID uuid.UUID, _ shared.Filter) ([]material.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []material.StockAlert
	for _, a := range r.alerts {
		if a.OrgID == orgID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) Count(_ context.Context, orgID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.alerts {
		if a.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	sent []*material.StockAlert
}

func (n *recordingNotifier) SendAlert(_ context.Context, alert *material.StockAlert) error {
	n.sent = append(n.sent, alert)
	return nil
}

func lowStockMaterial(t *testing.T, orgID uuid.UUID, current, min float64) *material.Material {
	t.Helper()
	m, err := material.NewMaterial(orgID, "ABS-750", "ABS Granulate 750", "kg", material.CategoryResin)
	require.NoError(t, err)
	require.NoError(t, m.SetMinStock(decimal.NewFromFloat(min)))
	m.CurrentStock = decimal.NewFromFloat(current)
	return m
}

func TestLowStockHandler(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("Creates an open alert and notifies", func(t *testing.T) {
		repo := newFakeAlertRepo()
		notifier := &recordingNotifier{}
		handler := NewLowStockHandler(repo, zap.NewNop()).WithNotifier(notifier)

		m := lowStockMaterial(t, orgID, 40, 100)
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		alert, err := repo.FindOpenByMaterial(ctx, orgID, m.ID)
		require.NoError(t, err)
		assert.Equal(t, material.AlertTypeLowStock, alert.AlertType)
		assert.Equal(t, "ABS-750", alert.MaterialCode)
		assert.Len(t, notifier.sent, 1)
	})

	t.Run("Repeated events refresh instead of stacking", func(t *testing.T) {
		repo := newFakeAlertRepo()
		handler := NewLowStockHandler(repo, zap.NewNop())

		m := lowStockMaterial(t, orgID, 40, 100)
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		m.CurrentStock = decimal.NewFromFloat(25)
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		total, err := repo.Count(ctx, orgID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		alert, err := repo.FindOpenByMaterial(ctx, orgID, m.ID)
		require.NoError(t, err)
		assert.True(t, alert.CurrentStock.Equal(decimal.NewFromFloat(25)))
	})

	t.Run("Escalates to OUT_OF_STOCK at zero", func(t *testing.T) {
		repo := newFakeAlertRepo()
		handler := NewLowStockHandler(repo, zap.NewNop())

		m := lowStockMaterial(t, orgID, 40, 100)
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		m.CurrentStock = decimal.Zero
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		alert, err := repo.FindOpenByMaterial(ctx, orgID, m.ID)
		require.NoError(t, err)
		assert.Equal(t, material.AlertTypeOutOfStock, alert.AlertType)
	})

	t.Run("Resolves the alert when stock recovers", func(t *testing.T) {
		repo := newFakeAlertRepo()
		handler := NewLowStockHandler(repo, zap.NewNop())

		m := lowStockMaterial(t, orgID, 40, 100)
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		m.CurrentStock = decimal.NewFromFloat(150)
		recovery := material.NewMovementRecordedEvent(m, material.MovementTypeIn, decimal.NewFromFloat(110), "PO-1")
		require.NoError(t, handler.Handle(ctx, recovery))

		_, err := repo.FindOpenByMaterial(ctx, orgID, m.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Movement below the threshold keeps the alert open", func(t *testing.T) {
		repo := newFakeAlertRepo()
		handler := NewLowStockHandler(repo, zap.NewNop())

		m := lowStockMaterial(t, orgID, 40, 100)
		require.NoError(t, handler.Handle(ctx, material.NewStockBelowMinimumEvent(m)))

		m.CurrentStock = decimal.NewFromFloat(60)
		partial := material.NewMovementRecordedEvent(m, material.MovementTypeIn, decimal.NewFromFloat(20), "PO-2")
		require.NoError(t, handler.Handle(ctx, partial))

		alert, err := repo.FindOpenByMaterial(ctx, orgID, m.ID)
		require.NoError(t, err)
		assert.True(t, alert.IsOpen())
	})

	t.Run("Movement without an open alert is a no-op", func(t *testing.T) {
		repo := newFakeAlertRepo()
		handler := NewLowStockHandler(repo, zap.NewNop())

		m := lowStockMaterial(t, orgID, 500, 100)
		evt := material.NewMovementRecordedEvent(m, material.MovementTypeIn, decimal.NewFromFloat(100), "PO-3")
		assert.NoError(t, handler.Handle(ctx, evt))
	})
}
