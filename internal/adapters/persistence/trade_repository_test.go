package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/persistence"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
	"github.com/andrescamacho/requisition-go/test/helpers"
)

func trade(session, key string, qty int, at time.Time) shop.TradeRecord {
	item := shop.Item{ID: 314, Name: "Feather", Stackable: true, Tradeable: true, Source: shop.Source{Name: "Gerrant", Kind: shop.MarketKindShop}}
	return shop.NewTradeRecord(session, key, item, shop.OperationBuy, qty, 2, 301, at)
}

func TestTradeRepository_RecordAndFindRecent(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTradeRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Record(ctx, trade("s1", "k", 10, base)))
	require.NoError(t, repo.Record(ctx, trade("s1", "k", 20, base.Add(time.Minute))))
	require.NoError(t, repo.Record(ctx, trade("s2", "k", 30, base.Add(2*time.Minute))))

	// Act
	all, err := repo.FindRecent(ctx, persistence.TradeFilter{})
	require.NoError(t, err)
	session, err := repo.FindRecent(ctx, persistence.TradeFilter{SessionID: "s1", Limit: 1})

	// Assert
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 30, all[0].Quantity)
	assert.Equal(t, 10, all[2].Quantity)
	require.Len(t, session, 1)
	assert.Equal(t, 20, session[0].Quantity)
	assert.Equal(t, "Feather", session[0].ItemName)
	assert.Equal(t, shop.OperationBuy, session[0].Operation)
	assert.Equal(t, 301, session[0].World)
}

func TestTradeRepository_GeneratesMissingID(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTradeRepository(db)
	ctx := context.Background()
	record := trade("s1", "k", 1, time.Now().UTC())
	record.ID = ""

	// Act
	err := repo.Record(ctx, record)

	// Assert
	require.NoError(t, err)
	found, err := repo.FindRecent(ctx, persistence.TradeFilter{RequirementKey: "k"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.NotEmpty(t, found[0].ID)
}
