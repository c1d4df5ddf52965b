package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// FulfillmentMetricsCollector records market fulfillment activity
type FulfillmentMetricsCollector struct {
	offersPlaced *prometheus.CounterVec
	transacted   *prometheus.CounterVec
	worldHops    *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
	offerWait    prometheus.Histogram
}

var _ fulfillment.MetricsRecorder = (*FulfillmentMetricsCollector)(nil)

// NewFulfillmentMetricsCollector creates a new fulfillment metrics collector
func NewFulfillmentMetricsCollector() *FulfillmentMetricsCollector {
	return &FulfillmentMetricsCollector{
		offersPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "offers_placed_total",
				Help:      "Order-book offers placed by operation",
			},
			[]string{"operation"},
		),
		transacted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "items_transacted_total",
				Help:      "Units bought or sold by market kind and operation",
			},
			[]string{"market", "operation"},
		),
		worldHops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "world_hops_total",
				Help:      "World hops performed while chasing shop stock",
			},
			[]string{"strategy"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fulfillment_outcomes_total",
				Help:      "Finished fulfillment calls by market kind, terminal state and success",
			},
			[]string{"market", "state", "success"},
		),
		offerWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "offer_wait_seconds",
				Help:      "Time spent waiting for order-book offers to fill",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
	}
}

// Register registers the fulfillment metrics with the Prometheus registry
func (c *FulfillmentMetricsCollector) Register() error {
	return register(c.offersPlaced, c.transacted, c.worldHops, c.outcomes, c.offerWait)
}

func (c *FulfillmentMetricsCollector) RecordOfferPlaced(op shop.Operation) {
	c.offersPlaced.WithLabelValues(string(op)).Inc()
}

func (c *FulfillmentMetricsCollector) RecordTransacted(kind shop.MarketKind, op shop.Operation, quantity int) {
	if quantity <= 0 {
		return
	}
	c.transacted.WithLabelValues(string(kind), string(op)).Add(float64(quantity))
}

func (c *FulfillmentMetricsCollector) RecordWorldHop(strategy string) {
	c.worldHops.WithLabelValues(strategy).Inc()
}

func (c *FulfillmentMetricsCollector) RecordOutcome(kind shop.MarketKind, state shop.FulfillmentState, success bool) {
	c.outcomes.WithLabelValues(string(kind), string(state), strconv.FormatBool(success)).Inc()
}

func (c *FulfillmentMetricsCollector) ObserveOfferWait(d time.Duration) {
	c.offerWait.Observe(d.Seconds())
}
