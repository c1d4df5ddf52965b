package metrics_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/metrics"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

func TestServer_ServesRegistry(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })
	collector := metrics.NewFulfillmentMetricsCollector()
	require.NoError(t, collector.Register())
	collector.RecordOfferPlaced(shop.OperationBuy)

	srv, err := metrics.NewServer("127.0.0.1", 0, "/metrics")
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	// Act
	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "requisition_engine_offers_placed_total"))
}
