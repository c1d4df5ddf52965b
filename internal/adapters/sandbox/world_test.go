package sandbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/domain/ports"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

var shopLocation = shared.NewWorldPoint(3200, 3200, 0)

func newWorld(t *testing.T) *sandbox.World {
	t.Helper()
	w, err := sandbox.NewWorld(sandbox.Seed{
		Position: shopLocation,
		Items: []sandbox.ItemSeed{
			{ID: 995, Name: "Coins", Stackable: true},
			{ID: 314, Name: "Feather", Stackable: true},
			{ID: 1059, Name: "Leather gloves", Slot: shared.EquipmentSlotGloves},
			{ID: 1063, Name: "Leather vambraces", Slot: shared.EquipmentSlotGloves},
		},
		Inventory: map[string]int{"Coins": 100, "Leather vambraces": 1},
		Bank:      map[string]int{"Feather": 40},
		Equipment: map[shared.EquipmentSlot]string{shared.EquipmentSlotGloves: "Leather gloves"},
		Shops: []sandbox.ShopSeed{{
			Name:       "Gerrant",
			Stock:      map[string]int{"Feather": 10},
			WorldStock: map[int]map[string]int{302: {"Feather": 0}},
			Prices:     map[string]int{"Feather": 2},
		}},
		Worlds:     []int{301, 302, 303},
		Population: map[int]int{302: 900, 303: 100},
	})
	require.NoError(t, err)
	return w
}

func TestNewWorld_Defaults(t *testing.T) {
	// Act
	w, err := sandbox.NewWorld(sandbox.Seed{})

	// Assert
	require.NoError(t, err)
	ctx := context.Background()
	assert.Equal(t, 301, w.Worlds().Current(ctx))
	assert.Equal(t, "STANDARD", w.Spellbook().Active(ctx))
	assert.Equal(t, shared.InventorySize, w.Inventory().FreeSlots(ctx))
	assert.Len(t, w.SlotSnapshot(), 8)
}

func TestNewWorld_RejectsUnknownInventoryItem(t *testing.T) {
	_, err := sandbox.NewWorld(sandbox.Seed{Inventory: map[string]int{"Dragon bones": 1}})
	assert.Error(t, err)
}

func TestShop_StockIsPerWorld(t *testing.T) {
	// Arrange
	w := newWorld(t)
	ctx := context.Background()
	source := shop.Source{Name: "Gerrant", Location: shopLocation, Kind: shop.MarketKindShop}
	require.NoError(t, w.Shop().Open(ctx, source))

	// Act
	require.NoError(t, w.Shop().Buy(ctx, "Feather", 25))
	left, listed, err := w.Shop().Stock(ctx, "Feather")
	require.NoError(t, err)
	require.NoError(t, w.Worlds().Hop(ctx, 302))
	openAfterHop := w.Shop().IsOpen(ctx)
	require.NoError(t, w.Shop().Open(ctx, source))
	elsewhere, _, err := w.Shop().Stock(ctx, "Feather")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 10, w.Inventory().CountByName(ctx, "Feather"))
	assert.Equal(t, 0, left)
	assert.True(t, listed)
	assert.False(t, openAfterHop)
	assert.Equal(t, 0, elsewhere)
}

func TestShop_SellPaysCoins(t *testing.T) {
	// Arrange
	w := newWorld(t)
	ctx := context.Background()
	require.NoError(t, w.Bank().Withdraw(ctx, "Feather", 15))
	require.NoError(t, w.Shop().Open(ctx, shop.Source{Name: "Gerrant", Location: shopLocation}))

	// Act
	err := w.Shop().Sell(ctx, "Feather", 15)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, w.Inventory().CountByName(ctx, "Feather"))
	assert.Equal(t, 130, w.Inventory().CountByName(ctx, "Coins"))
	assert.Equal(t, 25, w.Bank().CountByName(ctx, "Feather"))
}

func TestShop_OpenFailures(t *testing.T) {
	// Arrange
	w := newWorld(t)
	ctx := context.Background()
	far := shop.Source{Name: "Gerrant", Location: shared.NewWorldPoint(3300, 3300, 0)}
	near := shop.Source{Name: "Gerrant", Location: shopLocation}
	w.FailShopOpens("Gerrant", 1)

	// Act
	errFlaky := w.Shop().Open(ctx, near)
	errFar := w.Shop().Open(ctx, far)
	errUnknown := w.Shop().Open(ctx, shop.Source{Name: "Nobody", Location: shopLocation})
	errNear := w.Shop().Open(ctx, near)

	// Assert
	assert.Error(t, errFlaky)
	assert.Error(t, errFar)
	assert.Error(t, errUnknown)
	assert.NoError(t, errNear)
}

func TestBank_WithdrawAndDeposit(t *testing.T) {
	// Arrange
	w := newWorld(t)
	ctx := context.Background()

	// Act
	tooMany := w.Bank().Withdraw(ctx, "Feather", 41)
	require.NoError(t, w.Bank().Withdraw(ctx, "Feather", 30))
	require.NoError(t, w.Bank().Deposit(ctx, "Coins", 100))

	// Assert
	assert.Error(t, tooMany)
	assert.Equal(t, 30, w.Inventory().CountByName(ctx, "Feather"))
	assert.Equal(t, 10, w.Bank().CountByName(ctx, "Feather"))
	assert.Equal(t, 0, w.Inventory().CountByName(ctx, "Coins"))
	assert.Equal(t, 100, w.Bank().CountByName(ctx, "Coins"))
}

func TestEquipment_EquipSwapsWornItem(t *testing.T) {
	// Arrange
	w := newWorld(t)
	ctx := context.Background()

	// Act
	err := w.Equipment().Equip(ctx, 1063)

	// Assert
	require.NoError(t, err)
	worn, ok := w.Equipment().ItemInSlot(ctx, shared.EquipmentSlotGloves)
	require.True(t, ok)
	assert.Equal(t, 1063, worn)
	assert.Equal(t, 1, w.Inventory().Count(ctx, 1059))
	assert.Error(t, w.Equipment().Equip(ctx, 995))
}

func TestWorlds_NextHonoursStrategyAndExclusions(t *testing.T) {
	// Arrange
	w := newWorld(t)
	ctx := context.Background()

	// Act
	sequential, ok1 := w.Worlds().Next(ctx, ports.HopStrategySequential, nil)
	best, ok2 := w.Worlds().Next(ctx, ports.HopStrategyBest, nil)
	_, ok3 := w.Worlds().Next(ctx, ports.HopStrategySequential, map[int]bool{302: true, 303: true})
	w.RefuseWorld(303)
	refused := w.Worlds().Hop(ctx, 303)

	// Assert
	assert.True(t, ok1)
	assert.Equal(t, 302, sequential)
	assert.True(t, ok2)
	assert.Equal(t, 303, best)
	assert.False(t, ok3)
	assert.Error(t, refused)
	assert.Equal(t, 301, w.Worlds().Current(ctx))
}

func TestMovement_UnreachableTarget(t *testing.T) {
	// Arrange
	blocked := shared.NewWorldPoint(1, 1, 0)
	w, err := sandbox.NewWorld(sandbox.Seed{Unreachable: []shared.WorldPoint{blocked}})
	require.NoError(t, err)
	ctx := context.Background()

	// Act
	reached, err := w.Movement().WalkTo(ctx, blocked, 0)

	// Assert
	require.NoError(t, err)
	assert.False(t, reached)
	assert.False(t, w.Movement().IsInArea(ctx, blocked, 0))
}
