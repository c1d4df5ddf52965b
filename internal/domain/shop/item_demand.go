package shop

import (
	"fmt"
	"sync"
)

// ItemDemand is the per-item target of a shop requirement: how many units
// to buy or sell, how many are done, and the stock band inside which
// trading at a direct-stock shop is considered safe.
//
// Invariants:
//   - 0 <= completedAmount <= amount
//   - IsCompleted() <=> completedAmount >= amount
//   - completedAmount only grows through AddCompletedAmount
//
// ItemDemand performs no I/O. It is safe for concurrent use: the
// fulfillment engine writes progress while planners read it.
type ItemDemand struct {
	mu sync.RWMutex

	item            Item
	amount          int
	completedAmount int
	baseStock       int
	stockTolerance  int
	pricing         ExchangePricing
}

// NewItemDemand creates a demand with validation
func NewItemDemand(item Item, amount, baseStock, stockTolerance int) (*ItemDemand, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if baseStock < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBaseStock, baseStock)
	}
	if stockTolerance < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTolerance, stockTolerance)
	}

	return &ItemDemand{
		item:           item,
		amount:         amount,
		baseStock:      baseStock,
		stockTolerance: stockTolerance,
		pricing:        DefaultExchangePricing(),
	}, nil
}

// WithExchangePricing replaces the order-book pricing policy and returns d
func (d *ItemDemand) WithExchangePricing(p ExchangePricing) *ItemDemand {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pricing = p
	return d
}

// Getters

func (d *ItemDemand) Item() Item {
	return d.item
}

func (d *ItemDemand) Amount() int {
	return d.amount
}

func (d *ItemDemand) BaseStock() int {
	return d.baseStock
}

func (d *ItemDemand) StockTolerance() int {
	return d.stockTolerance
}

func (d *ItemDemand) Pricing() ExchangePricing {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pricing
}

func (d *ItemDemand) CompletedAmount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.completedAmount
}

// RemainingAmount returns how many units are still needed
func (d *ItemDemand) RemainingAmount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.amount - d.completedAmount
}

// IsCompleted returns true once completedAmount has reached amount
func (d *ItemDemand) IsCompleted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.completedAmount >= d.amount
}

// Progress returns the completed fraction in [0, 1]
func (d *ItemDemand) Progress() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return float64(d.completedAmount) / float64(d.amount)
}

// AddCompletedAmount advances progress by delta and returns the amount
// actually applied after clamping. Non-positive deltas are ignored so
// progress never moves backwards.
func (d *ItemDemand) AddCompletedAmount(delta int) int {
	if delta <= 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	before := d.completedAmount
	d.completedAmount = clamp(before+delta, 0, d.amount)
	return d.completedAmount - before
}

// SetCompletedAmount overwrites progress, clamped into [0, amount].
// Used when restoring progress observed outside the engine.
func (d *ItemDemand) SetCompletedAmount(value int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completedAmount = clamp(value, 0, d.amount)
}

// Stock band math

// MinimumStockForBuying is the lowest live stock at which buying is allowed
func (d *ItemDemand) MinimumStockForBuying() int {
	return max(0, d.baseStock-d.stockTolerance)
}

// MaximumStockForSelling is the highest live stock at which selling is allowed
func (d *ItemDemand) MaximumStockForSelling() int {
	return d.baseStock + d.stockTolerance
}

// AllowedToBuy returns how many units may be bought at the given live stock
func (d *ItemDemand) AllowedToBuy(stock int) int {
	return max(0, stock-d.MinimumStockForBuying()+1)
}

// AllowedToSell returns how many units may be sold at the given live stock
func (d *ItemDemand) AllowedToSell(stock int) int {
	return max(0, d.MaximumStockForSelling()-stock)
}

// CanProcessInShop reports whether the live stock lies inside the band
// for the operation
func (d *ItemDemand) CanProcessInShop(stock int, op Operation) bool {
	switch op {
	case OperationBuy:
		return stock >= d.MinimumStockForBuying()
	case OperationSell:
		return stock <= d.MaximumStockForSelling()
	default:
		return false
	}
}

// QuantityForCurrentVisit returns how many units to trade right now:
// the smaller of what is still needed and what the stock band allows.
func (d *ItemDemand) QuantityForCurrentVisit(stock int, op Operation) int {
	var allowed int
	switch op {
	case OperationBuy:
		allowed = d.AllowedToBuy(stock)
	case OperationSell:
		allowed = d.AllowedToSell(stock)
	default:
		return 0
	}
	return max(0, min(d.RemainingAmount(), allowed))
}

func (d *ItemDemand) String() string {
	return fmt.Sprintf("%s %d/%d (base=%d±%d)", d.item, d.CompletedAmount(), d.amount, d.baseStock, d.stockTolerance)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
