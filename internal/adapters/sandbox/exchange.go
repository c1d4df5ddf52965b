package sandbox

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

const coinName = "Coins"

type exchange struct{ w *World }

func (e exchange) Open(ctx context.Context) error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	e.w.exchangeOpen = true
	return nil
}

func (e exchange) Close(ctx context.Context) error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	e.w.exchangeOpen = false
	return nil
}

func (e exchange) Location() shared.WorldPoint {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	return e.w.exchangeLocation
}

// Offers advances every active offer by its item's fill rate and returns
// a snapshot of all slots
func (e exchange) Offers(ctx context.Context) ([]shop.Offer, error) {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	for i := range e.w.offers {
		o := &e.w.offers[i]
		if !o.IsActive() {
			continue
		}
		o.Transacted = min(o.Quantity, o.Transacted+e.w.fills[o.ItemID])
		if o.Transacted == o.Quantity {
			o.Status = shop.OfferStatusCompleted
		}
	}
	out := make([]shop.Offer, len(e.w.offers))
	copy(out, e.w.offers)
	return out, nil
}

func (e exchange) PlaceOffer(ctx context.Context, slot int, item shop.Item, op shop.Operation, quantity, price int) error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	if slot < 0 || slot >= len(e.w.offers) {
		return fmt.Errorf("no slot %d", slot)
	}
	if !e.w.offers[slot].IsEmpty() {
		return fmt.Errorf("slot %d is busy", slot)
	}
	if quantity <= 0 || price <= 0 {
		return fmt.Errorf("invalid offer %d x %d", quantity, price)
	}
	if op == shop.OperationSell {
		if e.w.countInventory(item.ID) < quantity {
			return fmt.Errorf("not enough %s to sell", item.Name)
		}
		e.w.removeFromInventory(item.ID, quantity)
	}
	e.w.offers[slot] = shop.Offer{
		Slot:      slot,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Operation: op,
		Price:     price,
		Quantity:  quantity,
		Status:    shop.OfferStatusActive,
	}
	return nil
}

func (e exchange) CancelOffer(ctx context.Context, slot int) error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	if slot < 0 || slot >= len(e.w.offers) {
		return fmt.Errorf("no slot %d", slot)
	}
	if e.w.offers[slot].IsActive() {
		e.w.offers[slot].Status = shop.OfferStatusCancelled
	}
	return nil
}

// CollectOffer hands over the traded goods or coins plus any unsold stock
// and empties the slot
func (e exchange) CollectOffer(ctx context.Context, slot int) (int, error) {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	if slot < 0 || slot >= len(e.w.offers) {
		return 0, fmt.Errorf("no slot %d", slot)
	}
	o := e.w.offers[slot]
	if !o.NeedsCollection() {
		return 0, fmt.Errorf("slot %d has nothing to collect", slot)
	}
	switch o.Operation {
	case shop.OperationBuy:
		e.w.addToInventory(o.ItemID, o.Transacted)
	case shop.OperationSell:
		e.w.addToInventory(o.ItemID, o.Remaining())
		if coins, ok := e.w.byName[coinName]; ok {
			e.w.addToInventory(coins, o.Transacted*o.Price)
		}
	}
	e.w.offers[slot] = shop.Offer{Slot: slot, Status: shop.OfferStatusEmpty}
	return o.Transacted, nil
}

func (e exchange) PriceSummary(ctx context.Context, itemID int) (shop.PriceSummary, error) {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	p, ok := e.w.prices[itemID]
	if !ok {
		return shop.PriceSummary{}, nil
	}
	return p, nil
}

// PutOffer places an offer directly, bypassing inventory checks. Used to
// seed slots held by other activities.
func (w *World) PutOffer(o shop.Offer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if o.Slot >= 0 && o.Slot < len(w.offers) {
		w.offers[o.Slot] = o
	}
}

// SetFillRate changes how many units of an item fill per read of the offers
func (w *World) SetFillRate(itemID, perRead int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fills[itemID] = perRead
}

// SlotSnapshot returns the slots without advancing fills
func (w *World) SlotSnapshot() []shop.Offer {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]shop.Offer, len(w.offers))
	copy(out, w.offers)
	return out
}
