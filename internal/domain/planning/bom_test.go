package planning

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillOfMaterials(t *testing.T) {
	orgID := uuid.New()

	t.Run("New BOM starts inactive and empty", func(t *testing.T) {
		bom, err := NewBillOfMaterials(orgID, "BOX", 1)
		require.NoError(t, err)
		assert.False(t, bom.Active)
		assert.Empty(t, bom.Items)
	})

	t.Run("Rejects invalid construction", func(t *testing.T) {
		_, err := NewBillOfMaterials(uuid.Nil, "BOX", 1)
		assert.Error(t, err)
		_, err = NewBillOfMaterials(orgID, " ", 1)
		assert.Error(t, err)
		_, err = NewBillOfMaterials(orgID, "BOX", 0)
		assert.Error(t, err)
	})

	t.Run("AddItem validates lines", func(t *testing.T) {
		bom, err := NewBillOfMaterials(orgID, "BOX", 1)
		require.NoError(t, err)

		require.NoError(t, bom.AddItem("PP", decimal.NewFromFloat(0.5), decimal.Zero))

		assert.Error(t, bom.AddItem("", decimal.NewFromFloat(1), decimal.Zero))
		assert.Error(t, bom.AddItem("PP", decimal.NewFromFloat(1), decimal.Zero)) // duplicate
		assert.Error(t, bom.AddItem("MB", decimal.Zero, decimal.Zero))
		assert.Error(t, bom.AddItem("MB", decimal.NewFromFloat(1), decimal.NewFromFloat(-1)))
	})

	t.Run("Self-reference is rejected outright", func(t *testing.T) {
		bom, err := NewBillOfMaterials(orgID, "BOX", 1)
		require.NoError(t, err)
		err = bom.AddItem("BOX", decimal.NewFromFloat(1), decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("Cannot activate an empty BOM", func(t *testing.T) {
		bom, err := NewBillOfMaterials(orgID, "BOX", 1)
		require.NoError(t, err)
		assert.Error(t, bom.Activate())

		require.NoError(t, bom.AddItem("PP", decimal.NewFromFloat(0.5), decimal.Zero))
		require.NoError(t, bom.Activate())
		assert.True(t, bom.Active)
	})
}

func TestBOMItemQuantities(t *testing.T) {
	t.Run("Effective quantity includes waste", func(t *testing.T) {
		item := BOMItem{
			QuantityPerUnit: decimal.NewFromFloat(2),
			WastePercent:    decimal.NewFromFloat(5),
		}
		assert.True(t, item.EffectiveQuantityPerUnit().Equal(decimal.NewFromFloat(2.1)))
		assert.True(t, item.GrossRequirement(decimal.NewFromFloat(100)).Equal(decimal.NewFromFloat(210)))
	})

	t.Run("Zero waste passes quantity through", func(t *testing.T) {
		item := BOMItem{QuantityPerUnit: decimal.NewFromFloat(0.75)}
		assert.True(t, item.GrossRequirement(decimal.NewFromFloat(4)).Equal(decimal.NewFromFloat(3)))
	})
}
