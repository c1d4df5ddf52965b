package config

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/domain/ports"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// FulfillmentConfig tunes the market fulfillment engine
type FulfillmentConfig struct {
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Shop     ShopConfig     `mapstructure:"shop"`

	// Market actions per second; 0 disables pacing
	ActionsPerSecond float64 `mapstructure:"actions_per_second" validate:"min=0"`
	ActionBurst      int     `mapstructure:"action_burst" validate:"min=1"`
}

// ExchangeConfig holds order-book settings
type ExchangeConfig struct {
	OfferTimeout     time.Duration `mapstructure:"offer_timeout" validate:"gt=0"`
	PollInterval     time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	SlotsToKeepFree  int           `mapstructure:"slots_to_keep_free" validate:"min=0"`
	MarkupPercent    float64       `mapstructure:"markup_percent" validate:"min=0,max=100"`
	DepthStepPercent float64       `mapstructure:"depth_step_percent" validate:"min=0,max=100"`
	MaxDepthSteps    int           `mapstructure:"max_depth_steps" validate:"min=0"`
}

// ShopConfig holds direct-stock settings
type ShopConfig struct {
	// Hopping and banking are on unless disabled
	DisableWorldHopping bool   `mapstructure:"disable_world_hopping"`
	DisableBanking      bool   `mapstructure:"disable_banking"`
	HopStrategy         string `mapstructure:"hop_strategy" validate:"required,oneof=sequential best"`
	MaxConsecutiveHops  int    `mapstructure:"max_consecutive_hops" validate:"min=1"`
	WalkTolerance       int    `mapstructure:"walk_tolerance" validate:"min=0"`
	OpenAttempts        int    `mapstructure:"open_attempts" validate:"min=1"`
	MaxVisits           int    `mapstructure:"max_visits" validate:"min=1"`
	DepositOnFinish     bool   `mapstructure:"deposit_on_finish"`
	CoinName            string `mapstructure:"coin_name" validate:"required"`
}

// EngineConfig converts the settings into the engine's configuration
func (c FulfillmentConfig) EngineConfig() fulfillment.Config {
	return fulfillment.Config{
		Exchange: fulfillment.ExchangeConfig{
			OfferTimeout:    c.Exchange.OfferTimeout,
			PollInterval:    c.Exchange.PollInterval,
			SlotsToKeepFree: c.Exchange.SlotsToKeepFree,
		},
		Shop: fulfillment.ShopConfig{
			WorldHopping:       !c.Shop.DisableWorldHopping,
			Banking:            !c.Shop.DisableBanking,
			HopStrategy:        ports.HopStrategy(c.Shop.HopStrategy),
			MaxConsecutiveHops: c.Shop.MaxConsecutiveHops,
			WalkTolerance:      c.Shop.WalkTolerance,
			OpenAttempts:       c.Shop.OpenAttempts,
			MaxVisits:          c.Shop.MaxVisits,
			DepositOnFinish:    c.Shop.DepositOnFinish,
			CoinName:           c.Shop.CoinName,
		},
		ActionsPerSecond: c.ActionsPerSecond,
		ActionBurst:      c.ActionBurst,
	}
}

// Pricing returns the default exchange pricing for demands that set none
func (c FulfillmentConfig) Pricing() shop.ExchangePricing {
	return shop.ExchangePricing{
		MarkupPercent:    decimal.NewFromFloat(c.Exchange.MarkupPercent),
		DepthStepPercent: decimal.NewFromFloat(c.Exchange.DepthStepPercent),
		MaxDepthSteps:    c.Exchange.MaxDepthSteps,
	}
}
