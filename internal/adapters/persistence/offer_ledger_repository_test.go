package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/persistence"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
	"github.com/andrescamacho/requisition-go/test/helpers"
)

var ledgerEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func cancelled(id string, itemID, remaining, price int, at time.Time) shop.CancelledOffer {
	return shop.CancelledOffer{
		ID:                id,
		ItemID:            itemID,
		ItemName:          "Item",
		Operation:         shop.OperationBuy,
		TotalQuantity:     remaining + 10,
		RemainingQuantity: remaining,
		Price:             price,
		OriginalSlot:      3,
		CancelledAt:       at,
	}
}

func TestOfferLedgerRepository_SaveAndLoad(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOfferLedgerRepository(db, shared.NewMockClock(ledgerEpoch))
	ctx := context.Background()

	offers := []shop.CancelledOffer{
		cancelled("b", 314, 40, 12, ledgerEpoch.Add(time.Minute)),
		cancelled("a", 526, 5, 3, ledgerEpoch),
	}

	// Act
	err := repo.Save(ctx, "SHOP/PRE_TASK/BUY:Gerrant::314", offers)
	require.NoError(t, err)
	loaded, err := repo.Load(ctx, "SHOP/PRE_TASK/BUY:Gerrant::314")

	// Assert
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a", loaded[0].ID)
	assert.Equal(t, "b", loaded[1].ID)
	assert.Equal(t, 40, loaded[1].RemainingQuantity)
	assert.Equal(t, 50, loaded[1].TotalQuantity)
	assert.Equal(t, 12, loaded[1].Price)
	assert.Equal(t, 3, loaded[1].OriginalSlot)
	assert.Equal(t, shop.OperationBuy, loaded[1].Operation)
	assert.True(t, loaded[0].CancelledAt.Equal(ledgerEpoch))
}

func TestOfferLedgerRepository_SaveReplacesSnapshot(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOfferLedgerRepository(db, shared.NewMockClock(ledgerEpoch))
	ctx := context.Background()
	key := "SHOP/BOTH/BUY:Aubury::556"

	require.NoError(t, repo.Save(ctx, key, []shop.CancelledOffer{
		cancelled("first", 1, 10, 5, ledgerEpoch),
		cancelled("second", 2, 10, 5, ledgerEpoch),
	}))

	// Act
	err := repo.Save(ctx, key, []shop.CancelledOffer{cancelled("second", 2, 4, 5, ledgerEpoch)})

	// Assert
	require.NoError(t, err)
	loaded, err := repo.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "second", loaded[0].ID)
	assert.Equal(t, 4, loaded[0].RemainingQuantity)
}

func TestOfferLedgerRepository_EmptySaveClears(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOfferLedgerRepository(db, nil)
	ctx := context.Background()
	key := "SHOP/POST_TASK/SELL:Grand Exchange::526"
	require.NoError(t, repo.Save(ctx, key, []shop.CancelledOffer{cancelled("x", 526, 7, 3, ledgerEpoch)}))

	// Act
	err := repo.Save(ctx, key, nil)

	// Assert
	require.NoError(t, err)
	loaded, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestOfferLedgerRepository_KeysAreIsolated(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOfferLedgerRepository(db, nil)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "k1", []shop.CancelledOffer{cancelled("one", 1, 7, 3, ledgerEpoch)}))
	require.NoError(t, repo.Save(ctx, "k2", []shop.CancelledOffer{cancelled("two", 2, 7, 3, ledgerEpoch)}))

	// Act
	err := repo.Delete(ctx, "k1")

	// Assert
	require.NoError(t, err)
	gone, err := repo.Load(ctx, "k1")
	require.NoError(t, err)
	assert.Empty(t, gone)
	kept, err := repo.Load(ctx, "k2")
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "two", kept[0].ID)
}

func TestOfferLedgerRepository_List(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(ledgerEpoch)
	repo := persistence.NewGormOfferLedgerRepository(db, clock)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "b-key", []shop.CancelledOffer{cancelled("b1", 1, 7, 3, ledgerEpoch)}))
	clock.Advance(time.Hour)
	require.NoError(t, repo.Save(ctx, "a-key", []shop.CancelledOffer{
		cancelled("a1", 1, 10, 3, ledgerEpoch),
		cancelled("a2", 2, 15, 3, ledgerEpoch),
	}))

	// Act
	summaries, err := repo.List(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "a-key", summaries[0].RequirementKey)
	assert.Equal(t, 2, summaries[0].Entries)
	assert.Equal(t, 25, summaries[0].Remaining)
	assert.True(t, summaries[0].LastSavedAt.Equal(ledgerEpoch.Add(time.Hour)))
	assert.Equal(t, "b-key", summaries[1].RequirementKey)
	assert.Equal(t, 1, summaries[1].Entries)
}
