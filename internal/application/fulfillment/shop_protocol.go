package fulfillment

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// visit is the outcome of one pass over the shop's listing
type visit struct {
	transacted int
	needHop    bool
	needBank   bool
	// zeroFloor names an item that can never be bought
	zeroFloor string
	// unlisted names an item missing from the listing
	unlisted string
}

func (v visit) productive() bool {
	return v.transacted > 0
}

// runShop drives the direct-stock protocol:
//
//	WALK_TO_SHOP -> OPEN_SHOP -> TRANSACT -> {WORLD_HOP | BANK | STOP | ALL_DONE}
//
// looping back to WALK_TO_SHOP after a hop or a bank trip.
//
// Rules:
//   - a productive visit resets the consecutive hop counter
//   - a non-productive hop increments it; exceeding MaxConsecutiveHops ends
//     the call in MAX_ATTEMPTS
//   - a BUY whose item has a zero buy floor fails regardless of priority
func (e *Engine) runShop(ctx context.Context, r *run) {
	cfg := e.config.Shop
	shopPort := e.world.Shop()
	defer func() {
		if shopPort.IsOpen(ctx) {
			_ = shopPort.Close(ctx)
		}
	}()

	consecutiveHops := 0
	for visits := 0; ; visits++ {
		if ctx.Err() != nil {
			r.finish(shop.StateCancelled, false, "cancelled")
			return
		}
		// Step 1: Walk and open, retrying up to OpenAttempts
		if err := e.reachShop(ctx, r); err != nil {
			if ctx.Err() != nil {
				r.finish(shop.StateCancelled, false, "cancelled")
				return
			}
			r.fail(err.Error())
			return
		}

		// Step 2: Trade every pending item the stock band allows
		r.to(shop.StateTransact)
		v, err := e.transact(ctx, r)
		if err != nil {
			if ctx.Err() != nil {
				r.finish(shop.StateCancelled, false, "cancelled")
				return
			}
			r.fail(err.Error())
			return
		}
		if v.zeroFloor != "" {
			r.finish(shop.StateFatal, false, fmt.Sprintf("%s can never be bought: buy floor is zero", v.zeroFloor))
			return
		}
		if v.unlisted != "" {
			r.fail(fmt.Sprintf("%s is not listed at %s", v.unlisted, r.req.Source().Name))
			return
		}

		if r.req.IsCompleted() {
			r.finish(shop.StateAllDone, true, "all items completed")
			return
		}
		if v.productive() {
			consecutiveHops = 0
		}

		r.logger.Log("DEBUG", "Shop visit finished", map[string]interface{}{
			"requirement": r.req.Key().String(),
			"visit":       visits + 1,
			"transacted":  v.transacted,
			"need_hop":    v.needHop,
			"need_bank":   v.needBank,
		})

		if cfg.MaxVisits > 0 && visits+1 >= cfg.MaxVisits {
			r.finish(shop.StateMaxAttempts, !r.req.IsMandatory(), fmt.Sprintf("gave up after %d visits", visits+1))
			return
		}

		// Step 3: Decide how to continue
		switch {
		case v.needBank && e.bankingEnabled(r.req):
			_ = shopPort.Close(ctx)
			r.to(shop.StateBank)
			changed, err := e.restock(ctx, r.req)
			if err != nil {
				r.logger.Log("WARNING", "Banking between visits failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
			if !changed {
				r.finish(shop.StateStop, !r.req.IsMandatory(), "banking changed nothing")
				return
			}
			r.to(shop.StateWalkToShop)

		case v.needHop && e.hoppingEnabled(r.req):
			_ = shopPort.Close(ctx)
			r.to(shop.StateWorldHop)
			if !v.productive() {
				consecutiveHops++
			}
			if consecutiveHops > cfg.MaxConsecutiveHops {
				r.finish(shop.StateMaxAttempts, !r.req.IsMandatory(),
					fmt.Sprintf("%d consecutive hops without progress", consecutiveHops))
				return
			}
			if err := e.hop(ctx, r); err != nil {
				if ctx.Err() != nil {
					r.finish(shop.StateCancelled, false, "cancelled")
					return
				}
				r.finish(shop.StateStop, !r.req.IsMandatory(), err.Error())
				return
			}
			r.to(shop.StateWalkToShop)

		case v.productive():
			// stock may allow another round on the same world
			r.to(shop.StateWalkToShop)

		default:
			r.finish(shop.StateStop, !r.req.IsMandatory(), "nothing could be traded")
			return
		}
	}
}

// reachShop walks to the shop and opens it. The machine must be in IDLE,
// BANK or WALK_TO_SHOP on entry and ends in OPEN_SHOP.
func (e *Engine) reachShop(ctx context.Context, r *run) error {
	cfg := e.config.Shop
	source := r.req.Source()
	attempts := max(1, cfg.OpenAttempts)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.sm.State() != shop.StateWalkToShop {
			r.to(shop.StateWalkToShop)
		}
		reached, err := e.world.Movement().WalkTo(ctx, source.Location, cfg.WalkTolerance)
		if err != nil || !reached {
			lastErr = fmt.Errorf("could not walk to %s", source.Name)
			r.logger.Log("WARNING", "Walk to shop failed", map[string]interface{}{
				"shop":    source.Name,
				"attempt": i + 1,
			})
			continue
		}

		r.to(shop.StateOpenShop)
		if err := e.pace(ctx); err != nil {
			return err
		}
		if err := e.world.Shop().Open(ctx, source); err != nil {
			lastErr = fmt.Errorf("could not open %s: %w", source.Name, err)
			r.logger.Log("WARNING", "Opening shop failed", map[string]interface{}{
				"shop":    source.Name,
				"attempt": i + 1,
				"error":   err.Error(),
			})
			continue
		}
		return nil
	}
	return lastErr
}

// transact trades every pending demand once against the live stock
func (e *Engine) transact(ctx context.Context, r *run) (visit, error) {
	var v visit
	op := r.req.Operation()
	shopPort := e.world.Shop()
	inv := e.world.Inventory()

	for _, d := range r.req.PendingDemands() {
		if err := ctx.Err(); err != nil {
			return v, err
		}
		item := d.Item()

		if op == shop.OperationBuy && d.MinimumStockForBuying() == 0 {
			v.zeroFloor = item.Name
			return v, nil
		}

		stock, listed, err := shopPort.Stock(ctx, item.Name)
		if err != nil {
			return v, fmt.Errorf("read stock of %s: %w", item.Name, err)
		}
		if !listed {
			v.unlisted = item.Name
			return v, nil
		}

		if !d.CanProcessInShop(stock, op) {
			v.needHop = true
			r.logger.Log("DEBUG", "Stock outside tolerance band", map[string]interface{}{
				"item":      item.Name,
				"operation": string(op),
				"stock":     stock,
				"base":      d.BaseStock(),
				"tolerance": d.StockTolerance(),
			})
			continue
		}

		qty := d.QuantityForCurrentVisit(stock, op)
		if qty <= 0 {
			// at the band edge: the stock allows no unit on this world
			v.needHop = true
			continue
		}
		before := inv.Count(ctx, item.ID)
		if op == shop.OperationBuy {
			qty = min(qty, stock)
			if !item.Stackable {
				qty = min(qty, inv.FreeSlots(ctx))
			} else if before == 0 && inv.FreeSlots(ctx) == 0 {
				qty = 0
			}
		} else {
			qty = min(qty, before)
		}
		if qty <= 0 {
			v.needBank = true
			continue
		}

		if err := e.pace(ctx); err != nil {
			return v, err
		}
		if op == shop.OperationBuy {
			err = shopPort.Buy(ctx, item.Name, qty)
		} else {
			err = shopPort.Sell(ctx, item.Name, qty)
		}
		if err != nil {
			r.logger.Log("WARNING", "Shop trade failed", map[string]interface{}{
				"item":      item.Name,
				"operation": string(op),
				"quantity":  qty,
				"error":     err.Error(),
			})
			v.needHop = true
			continue
		}

		after := inv.Count(ctx, item.ID)
		delta := after - before
		if op == shop.OperationSell {
			delta = before - after
		}
		if delta <= 0 {
			continue
		}

		applied := d.AddCompletedAmount(delta)
		v.transacted += applied
		e.recordTrade(ctx, r, item, applied, 0)
		r.logger.Log("INFO", "Shop trade completed", map[string]interface{}{
			"item":      item.Name,
			"operation": string(op),
			"requested": qty,
			"actual":    delta,
			"stock":     stock,
			"progress":  fmt.Sprintf("%d/%d", d.CompletedAmount(), d.Amount()),
		})

		if op == shop.OperationBuy && !item.Stackable && inv.FreeSlots(ctx) == 0 && !d.IsCompleted() {
			v.needBank = true
		}
	}
	return v, nil
}
