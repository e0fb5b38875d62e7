package material

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterial(t *testing.T) {
	orgID := uuid.New()

	t.Run("Creates material with defaults", func(t *testing.T) {
		m, err := NewMaterial(orgID, "PP-H030", "Polypropylene H030", "kg", CategoryResin)
		require.NoError(t, err)
		assert.Equal(t, "PP-H030", m.Code)
		assert.True(t, m.CurrentStock.IsZero())
		assert.True(t, m.Active)
		assert.Equal(t, 1, m.GetVersion())
	})

	t.Run("Trims the code", func(t *testing.T) {
		m, err := NewMaterial(orgID, "  ABS-750  ", "ABS 750", "kg", CategoryResin)
		require.NoError(t, err)
		assert.Equal(t, "ABS-750", m.Code)
	})

	t.Run("Rejects missing fields", func(t *testing.T) {
		_, err := NewMaterial(uuid.Nil, "X", "X", "kg", CategoryResin)
		assert.Error(t, err)
		_, err = NewMaterial(orgID, "", "X", "kg", CategoryResin)
		assert.Error(t, err)
		_, err = NewMaterial(orgID, "X", "", "kg", CategoryResin)
		assert.Error(t, err)
		_, err = NewMaterial(orgID, "X", "X", "", CategoryResin)
		assert.Error(t, err)
		_, err = NewMaterial(orgID, "X", "X", "kg", Category("FLUID"))
		assert.Error(t, err)
	})
}

func TestMaterialThreshold(t *testing.T) {
	orgID := uuid.New()

	newTestMaterial := func(t *testing.T) *Material {
		m, err := NewMaterial(orgID, "MB-BLUE", "Masterbatch Blue", "kg", CategoryColorant)
		require.NoError(t, err)
		require.NoError(t, m.SetMinStock(decimal.NewFromFloat(50)))
		return m
	}

	t.Run("ApplyRecomputedStock raises event below threshold", func(t *testing.T) {
		m := newTestMaterial(t)
		m.ApplyRecomputedStock(decimal.NewFromFloat(49))

		assert.True(t, m.IsBelowMinimum())
		events := m.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*StockBelowMinimumEvent)
		require.True(t, ok)
		assert.Equal(t, "MB-BLUE", evt.MaterialCode)
		assert.True(t, evt.CurrentStock.Equal(decimal.NewFromFloat(49)))
	})

	t.Run("No event at or above threshold", func(t *testing.T) {
		m := newTestMaterial(t)
		m.ApplyRecomputedStock(decimal.NewFromFloat(50))
		assert.False(t, m.IsBelowMinimum())
		assert.Empty(t, m.GetDomainEvents())
	})

	t.Run("Zero threshold never alerts", func(t *testing.T) {
		m := newTestMaterial(t)
		require.NoError(t, m.SetMinStock(decimal.Zero))
		m.ApplyRecomputedStock(decimal.NewFromFloat(-10))
		assert.False(t, m.IsBelowMinimum())
		assert.Empty(t, m.GetDomainEvents())
	})

	t.Run("Rejects negative threshold", func(t *testing.T) {
		m := newTestMaterial(t)
		assert.Error(t, m.SetMinStock(decimal.NewFromFloat(-1)))
	})
}

func TestStockLot(t *testing.T) {
	orgID := uuid.New()
	materialID := uuid.New()

	t.Run("Requires a lot number", func(t *testing.T) {
		_, err := NewStockLot(orgID, materialID, "   ", decimal.NewFromFloat(10), "", nil)
		assert.Error(t, err)
	})

	t.Run("Requires a positive quantity", func(t *testing.T) {
		_, err := NewStockLot(orgID, materialID, "L001", decimal.Zero, "", nil)
		assert.Error(t, err)
	})

	t.Run("Deduct enforces lot quantity", func(t *testing.T) {
		lot, err := NewStockLot(orgID, materialID, "L001", decimal.NewFromFloat(100), "Sabic", nil)
		require.NoError(t, err)

		require.NoError(t, lot.Deduct(decimal.NewFromFloat(60)))
		assert.True(t, lot.CurrentQuantity.Equal(decimal.NewFromFloat(40)))

		err = lot.Deduct(decimal.NewFromFloat(41))
		assert.Error(t, err)
	})

	t.Run("Blocked lots are not allocatable", func(t *testing.T) {
		lot, err := NewStockLot(orgID, materialID, "L002", decimal.NewFromFloat(10), "", nil)
		require.NoError(t, err)
		assert.True(t, lot.IsAllocatable())

		lot.Block()
		assert.False(t, lot.IsAllocatable())

		lot.Approve()
		assert.True(t, lot.IsAllocatable())
	})

	t.Run("Expired lots stay allocatable", func(t *testing.T) {
		past := time.Now().AddDate(0, -1, 0)
		lot, err := NewStockLot(orgID, materialID, "L003", decimal.NewFromFloat(10), "", &past)
		require.NoError(t, err)
		assert.True(t, lot.IsExpired())
		assert.True(t, lot.IsAllocatable())
	})
}
