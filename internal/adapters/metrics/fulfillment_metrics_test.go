package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/metrics"
	"github.com/andrescamacho/requisition-go/internal/application/mediator"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

func TestFulfillmentMetricsCollector_RecordsCounters(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })
	c := metrics.NewFulfillmentMetricsCollector()
	require.NoError(t, c.Register())

	// Act
	c.RecordOfferPlaced(shop.OperationBuy)
	c.RecordOfferPlaced(shop.OperationBuy)
	c.RecordTransacted(shop.MarketKindShop, shop.OperationBuy, 5)
	c.RecordTransacted(shop.MarketKindShop, shop.OperationBuy, 0)
	c.RecordWorldHop("SEQUENTIAL")
	c.RecordOutcome(shop.MarketKindExchange, shop.StatePartial, true)
	c.ObserveOfferWait(90 * time.Second)

	// Assert
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	series := make(map[string]int)
	for _, f := range families {
		names[f.GetName()] = true
		series[f.GetName()] = len(f.GetMetric())
	}
	assert.True(t, names["requisition_engine_offers_placed_total"])
	assert.True(t, names["requisition_engine_items_transacted_total"])
	assert.True(t, names["requisition_engine_world_hops_total"])
	assert.True(t, names["requisition_engine_fulfillment_outcomes_total"])
	assert.True(t, names["requisition_engine_offer_wait_seconds"])
	assert.Equal(t, 1, series["requisition_engine_items_transacted_total"])
	assert.Equal(t, 1, series["requisition_engine_offers_placed_total"])
}

func TestPrometheusMiddleware_RecordsRequests(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })
	collector := metrics.NewRequestMetricsCollector()
	require.NoError(t, collector.Register())
	mw := metrics.PrometheusMiddleware(collector)
	failing := func(ctx context.Context, req mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	}

	// Act
	_, err := mw(context.Background(), &struct{ N int }{}, failing)

	// Assert
	assert.Error(t, err)
	families, gatherErr := metrics.Registry.Gather()
	require.NoError(t, gatherErr)
	assert.NotEmpty(t, families)
}

func TestRegister_NoRegistryIsNoOp(t *testing.T) {
	// Arrange
	metrics.Registry = nil

	// Act
	err := metrics.NewFulfillmentMetricsCollector().Register()

	// Assert
	assert.NoError(t, err)
	assert.False(t, metrics.IsEnabled())
}
