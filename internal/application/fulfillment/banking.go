package fulfillment

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// needsPreBank is true when a BUY has no coins on hand or a SELL carries
// less than it still has to sell
func (e *Engine) needsPreBank(ctx context.Context, req *requirement.ShopRequirement) bool {
	inv := e.world.Inventory()
	if req.Operation() == shop.OperationBuy {
		return inv.CountByName(ctx, e.config.Shop.CoinName) == 0
	}
	for _, d := range req.PendingDemands() {
		if inv.Count(ctx, d.Item().ID) < d.RemainingAmount() {
			return true
		}
	}
	return false
}

// withBank walks to the bank, opens it, runs fn and closes it again
func (e *Engine) withBank(ctx context.Context, fn func(bank bankOps) error) error {
	bank := e.world.Bank()
	reached, err := e.world.Movement().WalkTo(ctx, bank.Location(), e.config.Shop.WalkTolerance)
	if err != nil {
		return fmt.Errorf("walk to bank: %w", err)
	}
	if !reached {
		return fmt.Errorf("bank not reached")
	}
	if err := bank.Open(ctx); err != nil {
		return fmt.Errorf("open bank: %w", err)
	}
	defer func() { _ = bank.Close(ctx) }()
	return fn(bankOps{e: e, ctx: ctx})
}

type bankOps struct {
	e   *Engine
	ctx context.Context
}

// withdrawAll takes every unit of name out of the bank
func (b bankOps) withdrawAll(name string) error {
	n := b.e.world.Bank().CountByName(b.ctx, name)
	if n == 0 {
		return nil
	}
	return b.e.world.Bank().Withdraw(b.ctx, name, n)
}

// withdrawUpTo takes at most amount units of name out of the bank
func (b bankOps) withdrawUpTo(name string, amount int) error {
	n := min(amount, b.e.world.Bank().CountByName(b.ctx, name))
	if n <= 0 {
		return nil
	}
	return b.e.world.Bank().Withdraw(b.ctx, name, n)
}

// depositCarried puts every carried unit of name into the bank
func (b bankOps) depositCarried(name string) error {
	n := b.e.world.Inventory().CountByName(b.ctx, name)
	if n == 0 {
		return nil
	}
	return b.e.world.Bank().Deposit(b.ctx, name, n)
}

// preBank withdraws coins for a BUY or the stock still to sell for a SELL
func (e *Engine) preBank(ctx context.Context, req *requirement.ShopRequirement) error {
	return e.withBank(ctx, func(b bankOps) error {
		if req.Operation() == shop.OperationBuy {
			return b.withdrawAll(e.config.Shop.CoinName)
		}
		return e.withdrawSellStock(ctx, b, req)
	})
}

func (e *Engine) withdrawSellStock(ctx context.Context, b bankOps, req *requirement.ShopRequirement) error {
	inv := e.world.Inventory()
	for _, d := range req.PendingDemands() {
		item := d.Item()
		missing := d.RemainingAmount() - inv.Count(ctx, item.ID)
		if missing <= 0 {
			continue
		}
		if !item.Stackable {
			missing = min(missing, inv.FreeSlots(ctx))
		}
		if err := b.withdrawUpTo(item.Name, missing); err != nil {
			return fmt.Errorf("withdraw %s: %w", item.Name, err)
		}
	}
	return nil
}

// restock runs between shop visits. A BUY deposits what it bought so far
// to free inventory; a SELL fetches more stock. Returns false when nothing
// changed, meaning another visit would be pointless.
func (e *Engine) restock(ctx context.Context, req *requirement.ShopRequirement) (bool, error) {
	inv := e.world.Inventory()
	freeBefore := inv.FreeSlots(ctx)
	heldBefore := e.heldPending(ctx, req)

	err := e.withBank(ctx, func(b bankOps) error {
		if req.Operation() == shop.OperationBuy {
			for _, d := range req.Demands() {
				if err := b.depositCarried(d.Item().Name); err != nil {
					return fmt.Errorf("deposit %s: %w", d.Item().Name, err)
				}
			}
			return nil
		}
		return e.withdrawSellStock(ctx, b, req)
	})
	if err != nil {
		return false, err
	}

	if req.Operation() == shop.OperationBuy {
		return inv.FreeSlots(ctx) > freeBefore, nil
	}
	return e.heldPending(ctx, req) > heldBefore, nil
}

func (e *Engine) heldPending(ctx context.Context, req *requirement.ShopRequirement) int {
	total := 0
	for _, d := range req.PendingDemands() {
		total += e.world.Inventory().Count(ctx, d.Item().ID)
	}
	return total
}

// depositProceeds banks bought items after a BUY or coins after a SELL
func (e *Engine) depositProceeds(ctx context.Context, req *requirement.ShopRequirement) error {
	return e.withBank(ctx, func(b bankOps) error {
		if req.Operation() == shop.OperationSell {
			return b.depositCarried(e.config.Shop.CoinName)
		}
		for _, d := range req.Demands() {
			if err := b.depositCarried(d.Item().Name); err != nil {
				return err
			}
		}
		return nil
	})
}
