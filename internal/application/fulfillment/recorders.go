package fulfillment

import (
	"context"
	"time"

	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// LedgerRepository persists offer recovery ledgers so preempted offers can
// be restored after a crash
type LedgerRepository interface {
	Save(ctx context.Context, requirementKey string, offers []shop.CancelledOffer) error
	Load(ctx context.Context, requirementKey string) ([]shop.CancelledOffer, error)
	Delete(ctx context.Context, requirementKey string) error
}

// TradeRecorder stores completed transaction batches
type TradeRecorder interface {
	Record(ctx context.Context, record shop.TradeRecord) error
}

// MetricsRecorder receives fulfillment measurements
type MetricsRecorder interface {
	RecordOfferPlaced(op shop.Operation)
	RecordTransacted(kind shop.MarketKind, op shop.Operation, quantity int)
	RecordWorldHop(reason string)
	RecordOutcome(kind shop.MarketKind, state shop.FulfillmentState, success bool)
	ObserveOfferWait(d time.Duration)
}

type noOpMetrics struct{}

func (noOpMetrics) RecordOfferPlaced(shop.Operation)                           {}
func (noOpMetrics) RecordTransacted(shop.MarketKind, shop.Operation, int)      {}
func (noOpMetrics) RecordWorldHop(string)                                      {}
func (noOpMetrics) RecordOutcome(shop.MarketKind, shop.FulfillmentState, bool) {}
func (noOpMetrics) ObserveOfferWait(time.Duration)                             {}
