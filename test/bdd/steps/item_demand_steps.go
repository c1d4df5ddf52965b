package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

type itemDemandContext struct {
	item      shop.Item
	demand    *shop.ItemDemand
	stock     int
	createErr error
}

func (ic *itemDemandContext) reset() {
	ic.demand = nil
	ic.stock = 0
	ic.createErr = nil
	ic.item, _ = shop.NewItem(314, "Feather", true, true, shop.Source{
		Name:     "General Store",
		Location: shared.NewWorldPoint(3212, 3246, 0),
		Kind:     shop.MarketKindShop,
	})
}

// Given steps

func (ic *itemDemandContext) anItemDemandFor(amount int, name string, base, tolerance int) error {
	item, err := shop.NewItem(ic.item.ID, name, true, true, ic.item.Source)
	if err != nil {
		return err
	}
	ic.item = item
	ic.demand, err = shop.NewItemDemand(item, amount, base, tolerance)
	return err
}

// When steps

func (ic *itemDemandContext) theShopHolds(stock int) error {
	ic.stock = stock
	return nil
}

func (ic *itemDemandContext) unitsAreCompleted(n int) error {
	ic.demand.AddCompletedAmount(n)
	return nil
}

func (ic *itemDemandContext) iCreateAnItemDemand(amount, base, tolerance int) error {
	_, ic.createErr = shop.NewItemDemand(ic.item, amount, base, tolerance)
	return nil
}

// Then steps

func (ic *itemDemandContext) theDemandCanBeProcessed(op string) error {
	if !ic.demand.CanProcessInShop(ic.stock, shop.Operation(op)) {
		return fmt.Errorf("expected %s to be allowed at stock %d", op, ic.stock)
	}
	return nil
}

func (ic *itemDemandContext) theDemandCannotBeProcessed(op string) error {
	if ic.demand.CanProcessInShop(ic.stock, shop.Operation(op)) {
		return fmt.Errorf("expected %s to be refused at stock %d", op, ic.stock)
	}
	return nil
}

func (ic *itemDemandContext) theDemandAllowsBuying(expected int) error {
	if got := ic.demand.AllowedToBuy(ic.stock); got != expected {
		return fmt.Errorf("expected %d allowed to buy, got %d", expected, got)
	}
	return nil
}

func (ic *itemDemandContext) theDemandAllowsSelling(expected int) error {
	if got := ic.demand.AllowedToSell(ic.stock); got != expected {
		return fmt.Errorf("expected %d allowed to sell, got %d", expected, got)
	}
	return nil
}

func (ic *itemDemandContext) theQuantityForThisVisitIs(op string, expected int) error {
	if got := ic.demand.QuantityForCurrentVisit(ic.stock, shop.Operation(op)); got != expected {
		return fmt.Errorf("expected %s quantity %d, got %d", op, expected, got)
	}
	return nil
}

func (ic *itemDemandContext) theMinimumStockForBuyingIs(expected int) error {
	if got := ic.demand.MinimumStockForBuying(); got != expected {
		return fmt.Errorf("expected minimum stock %d, got %d", expected, got)
	}
	return nil
}

func (ic *itemDemandContext) theMaximumStockForSellingIs(expected int) error {
	if got := ic.demand.MaximumStockForSelling(); got != expected {
		return fmt.Errorf("expected maximum stock %d, got %d", expected, got)
	}
	return nil
}

func (ic *itemDemandContext) theCompletedAmountIs(expected int) error {
	if got := ic.demand.CompletedAmount(); got != expected {
		return fmt.Errorf("expected completed amount %d, got %d", expected, got)
	}
	return nil
}

func (ic *itemDemandContext) theDemandIsCompleted() error {
	if !ic.demand.IsCompleted() {
		return fmt.Errorf("expected demand %s to be completed", ic.demand)
	}
	return nil
}

func (ic *itemDemandContext) demandCreationFailsWith(message string) error {
	if ic.createErr == nil {
		return fmt.Errorf("expected error containing %q, got none", message)
	}
	if !containsString(ic.createErr.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, ic.createErr.Error())
	}
	return nil
}

// InitializeItemDemandScenario registers the stock band steps
func InitializeItemDemandScenario(ctx *godog.ScenarioContext) {
	ic := &itemDemandContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		ic.reset()
		return c, nil
	})

	// Given steps
	ctx.Step(`^an item demand for (\d+) "([^"]*)" with base stock (\d+) and tolerance (\d+)$`, ic.anItemDemandFor)

	// When steps
	ctx.Step(`^the shop holds (\d+) units$`, ic.theShopHolds)
	ctx.Step(`^(\d+) units are completed$`, ic.unitsAreCompleted)
	ctx.Step(`^I create an item demand for (-?\d+) with base stock (-?\d+) and tolerance (-?\d+)$`, ic.iCreateAnItemDemand)

	// Then steps
	ctx.Step(`^the demand can be processed for "([^"]*)"$`, ic.theDemandCanBeProcessed)
	ctx.Step(`^the demand cannot be processed for "([^"]*)"$`, ic.theDemandCannotBeProcessed)
	ctx.Step(`^the demand allows buying (\d+) units$`, ic.theDemandAllowsBuying)
	ctx.Step(`^the demand allows selling (\d+) units$`, ic.theDemandAllowsSelling)
	ctx.Step(`^the quantity for this "([^"]*)" visit is (\d+)$`, ic.theQuantityForThisVisitIs)
	ctx.Step(`^the minimum stock for buying is (\d+)$`, ic.theMinimumStockForBuyingIs)
	ctx.Step(`^the maximum stock for selling is (\d+)$`, ic.theMaximumStockForSellingIs)
	ctx.Step(`^the completed amount is (\d+)$`, ic.theCompletedAmountIs)
	ctx.Step(`^the demand is completed$`, ic.theDemandIsCompleted)
	ctx.Step(`^demand creation fails with "([^"]*)"$`, ic.demandCreationFailsWith)
}
