package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// placement remembers an offer this call put on the book
type placement struct {
	demand   *shop.ItemDemand
	price    int
	quantity int
	at       time.Time
}

// runExchange drives the order-book protocol:
//
//	FREE_SLOTS -> PLACE_OFFERS -> AWAIT_OFFERS -> SWEEP_OFFERS -> RESTORE_OFFERS
//
// Offers still pending when the wait times out are left on the book; the
// next call collects them during FREE_SLOTS.
func (e *Engine) runExchange(ctx context.Context, r *run) {
	ex := e.world.Exchange()
	r.to(shop.StateFreeSlots)

	if err := e.openExchange(ctx); err != nil {
		e.abort(ctx, r, err)
		return
	}
	defer func() { _ = ex.Close(ctx) }()

	// Step 1: Make room for every pending item
	if err := e.freeSlots(ctx, r); err != nil {
		e.abort(ctx, r, err)
		return
	}

	// Step 2: Place one offer per pending item while slots remain
	r.to(shop.StatePlaceOffers)
	placed, err := e.placeOffers(ctx, r)
	if err != nil {
		e.abort(ctx, r, err)
		return
	}

	// Step 3: Wait for any subset to complete
	if len(placed) > 0 {
		r.to(shop.StateAwaitOffers)
		if err := e.awaitOffers(ctx, r, placed); err != nil {
			e.abort(ctx, r, err)
			return
		}
	}

	// Step 4: Collect anything that finished in the meantime
	r.to(shop.StateSweepOffers)
	if err := e.sweepOffers(ctx, r); err != nil {
		e.abort(ctx, r, err)
		return
	}

	// Step 5: Reissue preempted offers where slots allow
	r.to(shop.StateRestoreOffers)
	if err := e.restoreOffers(ctx, r); err != nil {
		e.abort(ctx, r, err)
		return
	}

	switch {
	case r.req.IsCompleted():
		r.finish(shop.StateAllDone, true, "all items completed")
	case r.result.OffersPlaced > 0 && e.config.Exchange.OfferTimeout > 0:
		r.finish(shop.StatePartial, true, "offers left outstanding after timeout")
	default:
		r.finish(shop.StateStop, !r.req.IsMandatory(), "no offer could be placed")
	}
}

// abort ends the call on cancellation or an exchange error
func (e *Engine) abort(ctx context.Context, r *run, err error) {
	if ctx.Err() != nil {
		r.finish(shop.StateCancelled, false, "cancelled")
		return
	}
	r.fail(err.Error())
}

func (e *Engine) openExchange(ctx context.Context) error {
	ex := e.world.Exchange()
	attempts := max(1, e.config.Shop.OpenAttempts)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		reached, err := e.world.Movement().WalkTo(ctx, ex.Location(), e.config.Shop.WalkTolerance)
		if err != nil || !reached {
			lastErr = fmt.Errorf("exchange not reached")
			continue
		}
		if err := ex.Open(ctx); err != nil {
			lastErr = fmt.Errorf("open exchange: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}

// demandFor matches an offer to one of the requirement's demands
func demandFor(req *requirement.ShopRequirement, o shop.Offer) *shop.ItemDemand {
	if o.Operation != req.Operation() {
		return nil
	}
	d, ok := req.DemandFor(o.ItemID)
	if !ok {
		return nil
	}
	return d
}

// collect empties a finished slot and credits the matching demand
func (e *Engine) collect(ctx context.Context, r *run, o shop.Offer) error {
	qty, err := e.world.Exchange().CollectOffer(ctx, o.Slot)
	if err != nil {
		return fmt.Errorf("collect slot %d: %w", o.Slot, err)
	}
	d := demandFor(r.req, o)
	if d == nil || qty <= 0 {
		return nil
	}
	applied := d.AddCompletedAmount(qty)
	if applied > 0 {
		e.recordTrade(ctx, r, d.Item(), applied, o.Price)
	}
	r.logger.Log("INFO", "Offer collected", map[string]interface{}{
		"slot":      o.Slot,
		"item":      o.ItemName,
		"collected": qty,
		"credited":  applied,
		"progress":  fmt.Sprintf("%d/%d", d.CompletedAmount(), d.Amount()),
	})
	return nil
}

// freeSlots collects finished offers, replaces duplicate active offers and
// preempts the least-progressed foreign offers until every pending item
// has a slot
func (e *Engine) freeSlots(ctx context.Context, r *run) error {
	ex := e.world.Exchange()

	offers, err := ex.Offers(ctx)
	if err != nil {
		return fmt.Errorf("read offers: %w", err)
	}
	for _, o := range offers {
		if o.NeedsCollection() {
			if err := e.collect(ctx, r, o); err != nil {
				return err
			}
		}
	}

	// Cancel our own active offers for pending items so they are replaced
	// with a fresh quantity and price
	offers, err = ex.Offers(ctx)
	if err != nil {
		return fmt.Errorf("read offers: %w", err)
	}
	for _, o := range offers {
		if !o.IsActive() {
			continue
		}
		d := demandFor(r.req, o)
		if d == nil || d.IsCompleted() {
			continue
		}
		if err := e.cancelAndCollect(ctx, r, o); err != nil {
			return err
		}
		r.logger.Log("DEBUG", "Duplicate offer replaced", map[string]interface{}{
			"slot": o.Slot,
			"item": o.ItemName,
		})
	}

	offers, err = ex.Offers(ctx)
	if err != nil {
		return fmt.Errorf("read offers: %w", err)
	}
	empty := 0
	var active []shop.Offer
	for _, o := range offers {
		switch {
		case o.IsEmpty():
			empty++
		case o.IsActive():
			active = append(active, o)
		}
	}

	needed := len(r.req.PendingDemands()) + e.config.Exchange.SlotsToKeepFree - empty
	if needed <= 0 {
		return nil
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].FillRatio() != active[j].FillRatio() {
			return active[i].FillRatio() < active[j].FillRatio()
		}
		return active[i].Slot < active[j].Slot
	})

	for _, o := range active {
		if needed == 0 {
			break
		}
		if err := e.cancelAndCollect(ctx, r, o); err != nil {
			return err
		}
		e.recordCancelled(ctx, r, o)
		needed--
		r.logger.Log("INFO", "Offer preempted to free a slot", map[string]interface{}{
			"slot":      o.Slot,
			"item":      o.ItemName,
			"remaining": o.Remaining(),
			"price":     o.Price,
		})
	}
	return nil
}

func (e *Engine) cancelAndCollect(ctx context.Context, r *run, o shop.Offer) error {
	if err := e.pace(ctx); err != nil {
		return err
	}
	if err := e.world.Exchange().CancelOffer(ctx, o.Slot); err != nil {
		return fmt.Errorf("cancel slot %d: %w", o.Slot, err)
	}
	return e.collect(ctx, r, o)
}

func (e *Engine) emptySlots(ctx context.Context) ([]int, error) {
	offers, err := e.world.Exchange().Offers(ctx)
	if err != nil {
		return nil, fmt.Errorf("read offers: %w", err)
	}
	var slots []int
	for _, o := range offers {
		if o.IsEmpty() {
			slots = append(slots, o.Slot)
		}
	}
	sort.Ints(slots)
	keep := min(e.config.Exchange.SlotsToKeepFree, len(slots))
	return slots[:len(slots)-keep], nil
}

// offerQuantity clips the remaining amount to what can be carried or sold
func (e *Engine) offerQuantity(ctx context.Context, op shop.Operation, d *shop.ItemDemand) int {
	qty := d.RemainingAmount()
	item := d.Item()
	inv := e.world.Inventory()
	if op == shop.OperationSell {
		return min(qty, inv.Count(ctx, item.ID))
	}
	if !item.Stackable {
		return min(qty, inv.FreeSlots(ctx))
	}
	return qty
}

func (e *Engine) placeOffers(ctx context.Context, r *run) (map[int]placement, error) {
	ex := e.world.Exchange()
	op := r.req.Operation()
	placed := make(map[int]placement)

	slots, err := e.emptySlots(ctx)
	if err != nil {
		return placed, err
	}

	for _, d := range r.req.PendingDemands() {
		if len(slots) == 0 {
			r.logger.Log("INFO", "No exchange slot left for pending items", map[string]interface{}{
				"requirement": r.req.Key().String(),
				"placed":      len(placed),
			})
			break
		}
		item := d.Item()

		qty := e.offerQuantity(ctx, op, d)
		if qty <= 0 {
			r.logger.Log("WARNING", "Nothing to offer for item", map[string]interface{}{
				"item":      item.Name,
				"operation": string(op),
			})
			continue
		}

		summary, err := ex.PriceSummary(ctx, item.ID)
		if err != nil {
			r.logger.Log("WARNING", "Price lookup failed", map[string]interface{}{
				"item":  item.Name,
				"error": err.Error(),
			})
			continue
		}
		depth := e.depth(r.req, item.ID)
		price := d.Pricing().Quote(op, summary, depth)
		if price <= 0 {
			r.logger.Log("WARNING", "No price available for item", map[string]interface{}{
				"item": item.Name,
			})
			continue
		}

		if err := e.pace(ctx); err != nil {
			return placed, err
		}
		slot := slots[0]
		if err := ex.PlaceOffer(ctx, slot, item, op, qty, price); err != nil {
			r.logger.Log("WARNING", "Failed to place offer", map[string]interface{}{
				"slot":  slot,
				"item":  item.Name,
				"error": err.Error(),
			})
			continue
		}
		slots = slots[1:]
		placed[slot] = placement{demand: d, price: price, quantity: qty, at: e.clock.Now()}
		r.result.OffersPlaced++
		e.metrics.RecordOfferPlaced(op)

		r.logger.Log("INFO", "Offer placed", map[string]interface{}{
			"slot":      slot,
			"item":      item.Name,
			"operation": string(op),
			"quantity":  qty,
			"price":     price,
			"depth":     depth,
		})
	}
	return placed, nil
}

// awaitOffers polls until every placed offer finished or the timeout hit.
// Completed offers are collected as soon as they are seen.
func (e *Engine) awaitOffers(ctx context.Context, r *run, placed map[int]placement) error {
	ex := e.world.Exchange()
	outstanding := make(map[int]placement, len(placed))
	for slot, p := range placed {
		outstanding[slot] = p
	}
	deadline := e.clock.Now().Add(e.config.Exchange.OfferTimeout)

	for len(outstanding) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		offers, err := ex.Offers(ctx)
		if err != nil {
			r.logger.Log("WARNING", "Failed to read offers while waiting", map[string]interface{}{
				"error": err.Error(),
			})
		}
		for _, o := range offers {
			p, ok := outstanding[o.Slot]
			if !ok || o.ItemID != p.demand.Item().ID || !o.NeedsCollection() {
				continue
			}
			if err := e.collect(ctx, r, o); err != nil {
				return err
			}
			delete(outstanding, o.Slot)
			e.metrics.ObserveOfferWait(e.clock.Now().Sub(p.at))
			e.resetDepth(r.req, o.ItemID)
		}

		if len(outstanding) == 0 || !e.clock.Now().Before(deadline) {
			break
		}
		e.clock.Sleep(e.config.Exchange.PollInterval)
	}

	for slot, p := range outstanding {
		e.bumpDepth(r.req, p.demand.Item().ID)
		r.logger.Log("INFO", "Offer still pending after timeout", map[string]interface{}{
			"slot":     slot,
			"item":     p.demand.Item().Name,
			"quantity": p.quantity,
			"price":    p.price,
		})
	}
	return nil
}

// sweepOffers collects every finished offer for the requirement's items,
// including partially filled ones that were cancelled
func (e *Engine) sweepOffers(ctx context.Context, r *run) error {
	offers, err := e.world.Exchange().Offers(ctx)
	if err != nil {
		return fmt.Errorf("read offers: %w", err)
	}
	for _, o := range offers {
		if o.NeedsCollection() && demandFor(r.req, o) != nil {
			if err := e.collect(ctx, r, o); err != nil {
				return err
			}
		}
	}
	return nil
}

// restoreOffers reissues preempted offers into free slots
func (e *Engine) restoreOffers(ctx context.Context, r *run) error {
	ledger := r.req.Ledger()
	entries := ledger.Entries()
	if len(entries) == 0 {
		return nil
	}

	slots, err := e.emptySlots(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for _, entry := range entries {
		if len(slots) == 0 {
			break
		}
		if err := e.pace(ctx); err != nil {
			return err
		}
		item := shop.Item{
			ID:        entry.ItemID,
			Name:      entry.ItemName,
			Tradeable: true,
			Source:    shop.Source{Kind: shop.MarketKindExchange},
		}
		slot := slots[0]
		err := e.world.Exchange().PlaceOffer(ctx, slot, item, entry.Operation, entry.RemainingQuantity, entry.Price)
		if err != nil {
			r.logger.Log("WARNING", "Failed to restore cancelled offer", map[string]interface{}{
				"item":  entry.ItemName,
				"slot":  slot,
				"error": err.Error(),
			})
			continue
		}
		slots = slots[1:]
		ledger.Remove(entry.ID)
		restored++
		r.logger.Log("INFO", "Cancelled offer restored", map[string]interface{}{
			"item":          entry.ItemName,
			"slot":          slot,
			"original_slot": entry.OriginalSlot,
			"remaining":     entry.RemainingQuantity,
			"price":         entry.Price,
		})
	}

	if restored > 0 {
		e.persistLedger(ctx, r)
	}
	if ledger.Len() > 0 {
		r.logger.Log("INFO", "Cancelled offers waiting for a free slot", map[string]interface{}{
			"requirement": r.req.Key().String(),
			"pending":     ledger.Len(),
		})
	}
	return nil
}
