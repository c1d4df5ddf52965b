package fulfillment

import (
	"context"

	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// restoreLedger reloads a persisted ledger when the in-memory one is empty,
// which is the case after a restart
func (e *Engine) restoreLedger(ctx context.Context, r *run) {
	if e.ledgers == nil || r.req.Ledger().Len() > 0 {
		return
	}
	key := r.req.Key().String()
	offers, err := e.ledgers.Load(ctx, key)
	if err != nil {
		r.logger.Log("WARNING", "Failed to load offer ledger", map[string]interface{}{
			"requirement": key,
			"error":       err.Error(),
		})
		return
	}
	if len(offers) == 0 {
		return
	}
	r.req.Ledger().Replace(offers)
	r.logger.Log("INFO", "Offer ledger reloaded", map[string]interface{}{
		"requirement": key,
		"entries":     r.req.Ledger().Len(),
	})
}

// persistLedger snapshots the ledger, dropping the row once it is empty
func (e *Engine) persistLedger(ctx context.Context, r *run) {
	if e.ledgers == nil {
		return
	}
	key := r.req.Key().String()
	entries := r.req.Ledger().Entries()

	var err error
	if len(entries) == 0 {
		err = e.ledgers.Delete(ctx, key)
	} else {
		err = e.ledgers.Save(ctx, key, entries)
	}
	if err != nil {
		r.logger.Log("WARNING", "Failed to persist offer ledger", map[string]interface{}{
			"requirement": key,
			"entries":     len(entries),
			"error":       err.Error(),
		})
	}
}

// recordCancelled snapshots a preempted offer into the ledger
func (e *Engine) recordCancelled(ctx context.Context, r *run, offer shop.Offer) {
	entry := shop.NewCancelledOffer(offer, e.clock.Now())
	if !r.req.Ledger().Record(entry) {
		r.logger.Log("DEBUG", "Cancelled offer not worth restoring", map[string]interface{}{
			"slot": offer.Slot,
			"item": offer.ItemName,
		})
		return
	}
	e.persistLedger(ctx, r)
}
