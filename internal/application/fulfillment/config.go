package fulfillment

import (
	"time"

	"github.com/andrescamacho/requisition-go/internal/domain/ports"
)

// ExchangeConfig tunes the order-book protocol
type ExchangeConfig struct {
	// OfferTimeout bounds the wait for a batch of offers to complete
	OfferTimeout time.Duration
	// PollInterval is the pause between two reads of the offer slots
	PollInterval time.Duration
	// SlotsToKeepFree are left empty for other users of the exchange
	SlotsToKeepFree int
}

// ShopConfig tunes the direct-stock protocol
type ShopConfig struct {
	WorldHopping       bool
	Banking            bool
	HopStrategy        ports.HopStrategy
	MaxConsecutiveHops int
	WalkTolerance      int
	OpenAttempts       int
	// MaxVisits caps shop visits per call regardless of progress
	MaxVisits int
	// DepositOnFinish deposits bought items (BUY) or coins (SELL) once the
	// protocol ends
	DepositOnFinish bool
	// CoinName is the bank/inventory name of the currency item
	CoinName string
}

// Config collects every engine setting
type Config struct {
	Exchange ExchangeConfig
	Shop     ShopConfig

	// ActionsPerSecond paces market actions. Zero disables pacing.
	ActionsPerSecond float64
	ActionBurst      int
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Exchange: ExchangeConfig{
			OfferTimeout:    2 * time.Minute,
			PollInterval:    2 * time.Second,
			SlotsToKeepFree: 0,
		},
		Shop: ShopConfig{
			WorldHopping:       true,
			Banking:            true,
			HopStrategy:        ports.HopStrategySequential,
			MaxConsecutiveHops: 10,
			WalkTolerance:      5,
			OpenAttempts:       3,
			MaxVisits:          50,
			CoinName:           "Coins",
		},
		ActionsPerSecond: 2,
		ActionBurst:      1,
	}
}
