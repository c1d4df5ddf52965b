package shop_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

func feather(t *testing.T) shop.Item {
	t.Helper()
	item, err := shop.NewItem(314, "Feather", true, true, shop.Source{
		Name:     "General Store",
		Location: shared.NewWorldPoint(3212, 3246, 0),
		Kind:     shop.MarketKindShop,
	})
	require.NoError(t, err)
	return item
}

func TestItemDemand_ProgressIsMonotonic(t *testing.T) {
	// Arrange
	d, err := shop.NewItemDemand(feather(t), 10, 10, 2)
	require.NoError(t, err)

	// Act
	applied := d.AddCompletedAmount(4)
	ignored := d.AddCompletedAmount(-3)

	// Assert
	assert.Equal(t, 4, applied)
	assert.Zero(t, ignored)
	assert.Equal(t, 4, d.CompletedAmount())
	assert.Equal(t, 6, d.RemainingAmount())
	assert.InDelta(t, 0.4, d.Progress(), 1e-9)
}

func TestItemDemand_ConcurrentProgressNeverOvershoots(t *testing.T) {
	// Arrange
	d, err := shop.NewItemDemand(feather(t), 50, 10, 2)
	require.NoError(t, err)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.AddCompletedAmount(1)
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 50, d.CompletedAmount())
	assert.True(t, d.IsCompleted())
}

func TestNewItem_Validation(t *testing.T) {
	// Act
	_, noID := shop.NewItem(0, "Feather", true, true, shop.Source{Kind: shop.MarketKindShop})
	_, noName := shop.NewItem(314, "", true, true, shop.Source{Kind: shop.MarketKindShop})

	// Assert
	assert.ErrorIs(t, noID, shop.ErrInvalidItem)
	assert.ErrorIs(t, noName, shop.ErrInvalidItem)
}
