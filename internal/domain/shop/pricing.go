package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceSummary is the market's view of recent trading for one item
type PriceSummary struct {
	// WeightedAverage is the time-weighted average of recent trades (0 if none)
	WeightedAverage int
	// Samples is the number of trades behind WeightedAverage
	Samples int
	// GuidePrice is the market's published reference price
	GuidePrice int
	// Window is the period the average covers
	Window time.Duration
}

// HasRecentTrades returns true when the weighted average can be trusted
func (s PriceSummary) HasRecentTrades() bool {
	return s.Samples > 0 && s.WeightedAverage > 0
}

// ExchangePricing decides the price of an order-book offer.
//
// Pricing rules:
//   - With recent trades, price off the time-weighted average adjusted by
//     MarkupPercent (up for buys, down for sells)
//   - Without them, walk the order book from the guide price one
//     DepthStepPercent at a time, up to MaxDepthSteps
//   - Buys never exceed MaxPrice (when set); sells never go below MinPrice
type ExchangePricing struct {
	MaxPrice         int
	MinPrice         int
	MarkupPercent    decimal.Decimal
	DepthStepPercent decimal.Decimal
	MaxDepthSteps    int
}

// DefaultExchangePricing returns a 5% markup with 5% depth steps
func DefaultExchangePricing() ExchangePricing {
	return ExchangePricing{
		MarkupPercent:    decimal.NewFromInt(5),
		DepthStepPercent: decimal.NewFromInt(5),
		MaxDepthSteps:    6,
	}
}

// Quote returns the offer price per unit, or 0 when no price can be derived.
// depth counts how many times an offer for this item has already been
// placed without filling during the current attempt.
func (p ExchangePricing) Quote(op Operation, summary PriceSummary, depth int) int {
	var base, adjust decimal.Decimal

	if summary.HasRecentTrades() {
		base = decimal.NewFromInt(int64(summary.WeightedAverage))
		adjust = p.MarkupPercent
	} else if summary.GuidePrice > 0 {
		if depth > p.MaxDepthSteps {
			depth = p.MaxDepthSteps
		}
		if depth < 0 {
			depth = 0
		}
		base = decimal.NewFromInt(int64(summary.GuidePrice))
		adjust = p.DepthStepPercent.Mul(decimal.NewFromInt(int64(depth)))
	} else {
		return 0
	}

	factor := adjust.Div(hundred)
	switch op {
	case OperationBuy:
		price := int(base.Mul(decimal.NewFromInt(1).Add(factor)).Ceil().IntPart())
		if p.MaxPrice > 0 && price > p.MaxPrice {
			price = p.MaxPrice
		}
		return max(1, price)
	case OperationSell:
		price := int(base.Mul(decimal.NewFromInt(1).Sub(factor)).Floor().IntPart())
		return max(1, p.MinPrice, price)
	default:
		return 0
	}
}
