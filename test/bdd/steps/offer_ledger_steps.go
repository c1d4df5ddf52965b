package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

type offerLedgerContext struct {
	ledger *shop.OfferRecoveryLedger
	clock  *shared.MockClock
	slot   int
}

func (oc *offerLedgerContext) reset() {
	oc.ledger = nil
	oc.clock = shared.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	oc.slot = 0
}

func (oc *offerLedgerContext) anEmptyOfferRecoveryLedger() error {
	oc.ledger = shop.NewOfferRecoveryLedger()
	return nil
}

func (oc *offerLedgerContext) anOfferIsCancelled(op string, quantity int, name string, price, filled int) error {
	offer := shop.Offer{
		Slot:       oc.slot,
		ItemID:     1000 + oc.slot,
		ItemName:   name,
		Operation:  shop.Operation(op),
		Price:      price,
		Quantity:   quantity,
		Transacted: filled,
		Status:     shop.OfferStatusActive,
	}
	oc.slot++
	oc.ledger.Record(shop.NewCancelledOffer(offer, oc.clock.Now()))
	return nil
}

func (oc *offerLedgerContext) secondsPass(seconds int) error {
	oc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (oc *offerLedgerContext) entryFor(name string) (shop.CancelledOffer, error) {
	for _, e := range oc.ledger.Entries() {
		if e.ItemName == name {
			return e, nil
		}
	}
	return shop.CancelledOffer{}, fmt.Errorf("no ledger entry for %s", name)
}

func (oc *offerLedgerContext) theEntryIsReissued(name string) error {
	e, err := oc.entryFor(name)
	if err != nil {
		return err
	}
	oc.ledger.Remove(e.ID)
	return nil
}

func (oc *offerLedgerContext) theLedgerHolds(expected int) error {
	if got := oc.ledger.Len(); got != expected {
		return fmt.Errorf("expected %d ledger entries, got %d", expected, got)
	}
	return nil
}

func (oc *offerLedgerContext) theEntryHasRemaining(name string, remaining, price int) error {
	e, err := oc.entryFor(name)
	if err != nil {
		return err
	}
	if e.RemainingQuantity != remaining || e.Price != price {
		return fmt.Errorf("expected %d remaining at %d, got %d at %d", remaining, price, e.RemainingQuantity, e.Price)
	}
	return nil
}

func (oc *offerLedgerContext) theLedgerEntriesAre(names string) error {
	var got []string
	for _, e := range oc.ledger.Entries() {
		got = append(got, e.ItemName)
	}
	if strings.Join(got, ",") != names {
		return fmt.Errorf("expected entries %s, got %s", names, strings.Join(got, ","))
	}
	return nil
}

// InitializeOfferLedgerScenario registers the offer recovery steps
func InitializeOfferLedgerScenario(ctx *godog.ScenarioContext) {
	oc := &offerLedgerContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		oc.reset()
		return c, nil
	})

	ctx.Step(`^an empty offer recovery ledger$`, oc.anEmptyOfferRecoveryLedger)
	ctx.Step(`^an offer to "([^"]*)" (\d+) "([^"]*)" at (\d+) with (\d+) filled is cancelled$`, oc.anOfferIsCancelled)
	ctx.Step(`^(\d+) seconds pass$`, oc.secondsPass)
	ctx.Step(`^the ledger entry for "([^"]*)" is reissued$`, oc.theEntryIsReissued)
	ctx.Step(`^the ledger holds (\d+) offers?$`, oc.theLedgerHolds)
	ctx.Step(`^the ledger entry for "([^"]*)" has (\d+) remaining at (\d+)$`, oc.theEntryHasRemaining)
	ctx.Step(`^the ledger entries are "([^"]*)"$`, oc.theLedgerEntriesAre)
}
