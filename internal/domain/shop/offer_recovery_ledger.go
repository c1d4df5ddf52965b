package shop

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CancelledOffer is a snapshot of an order-book offer that was preempted
// to free a slot. It is kept so the offer can be reissued later.
type CancelledOffer struct {
	ID                string
	ItemID            int
	ItemName          string
	Operation         Operation
	TotalQuantity     int
	RemainingQuantity int
	Price             int
	OriginalSlot      int
	CancelledAt       time.Time
}

// NewCancelledOffer snapshots an active offer at cancellation time
func NewCancelledOffer(offer Offer, cancelledAt time.Time) CancelledOffer {
	return CancelledOffer{
		ID:                uuid.New().String(),
		ItemID:            offer.ItemID,
		ItemName:          offer.ItemName,
		Operation:         offer.Operation,
		TotalQuantity:     offer.Quantity,
		RemainingQuantity: offer.Remaining(),
		Price:             offer.Price,
		OriginalSlot:      offer.Slot,
		CancelledAt:       cancelledAt,
	}
}

// WorthRestoring returns true if reissuing the offer would trade anything
func (c CancelledOffer) WorthRestoring() bool {
	return c.RemainingQuantity > 0 && c.Price > 0
}

// OfferRecoveryLedger tracks preempted order-book offers until they are
// reissued. Only offers worth restoring are retained.
type OfferRecoveryLedger struct {
	mu      sync.Mutex
	entries map[string]CancelledOffer
}

// NewOfferRecoveryLedger creates an empty ledger
func NewOfferRecoveryLedger() *OfferRecoveryLedger {
	return &OfferRecoveryLedger{entries: make(map[string]CancelledOffer)}
}

// Record stores a cancelled offer. Returns false if the offer is not
// worth restoring and was dropped.
func (l *OfferRecoveryLedger) Record(offer CancelledOffer) bool {
	if !offer.WorthRestoring() {
		return false
	}
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[offer.ID] = offer
	return true
}

// Remove forgets an entry once it has been reissued
func (l *OfferRecoveryLedger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
}

// Entries returns the tracked offers, oldest cancellation first
func (l *OfferRecoveryLedger) Entries() []CancelledOffer {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]CancelledOffer, 0, len(l.entries))
	for _, e := range l.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CancelledAt.Equal(result[j].CancelledAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CancelledAt.Before(result[j].CancelledAt)
	})
	return result
}

// Len returns the number of tracked offers
func (l *OfferRecoveryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset drops every tracked offer
func (l *OfferRecoveryLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]CancelledOffer)
}

// Replace swaps the tracked offers for a loaded snapshot, filtering out
// entries that are no longer worth restoring
func (l *OfferRecoveryLedger) Replace(offers []CancelledOffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]CancelledOffer, len(offers))
	for _, o := range offers {
		if o.WorthRestoring() && o.ID != "" {
			l.entries[o.ID] = o
		}
	}
}
