package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" && cfg.Database.Type == "sqlite" {
		cfg.Database.Path = "requisition.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "requisition"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "requisition"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Exchange defaults
	ex := &cfg.Fulfillment.Exchange
	if ex.OfferTimeout == 0 {
		ex.OfferTimeout = 2 * time.Minute
	}
	if ex.PollInterval == 0 {
		ex.PollInterval = 2 * time.Second
	}
	if ex.MarkupPercent == 0 {
		ex.MarkupPercent = 5
	}
	if ex.DepthStepPercent == 0 {
		ex.DepthStepPercent = 5
	}
	if ex.MaxDepthSteps == 0 {
		ex.MaxDepthSteps = 6
	}

	// Shop defaults
	sh := &cfg.Fulfillment.Shop
	if sh.HopStrategy == "" {
		sh.HopStrategy = "sequential"
	}
	if sh.MaxConsecutiveHops == 0 {
		sh.MaxConsecutiveHops = 10
	}
	if sh.WalkTolerance == 0 {
		sh.WalkTolerance = 5
	}
	if sh.OpenAttempts == 0 {
		sh.OpenAttempts = 3
	}
	if sh.MaxVisits == 0 {
		sh.MaxVisits = 50
	}
	if sh.CoinName == "" {
		sh.CoinName = "Coins"
	}

	if cfg.Fulfillment.ActionsPerSecond == 0 {
		cfg.Fulfillment.ActionsPerSecond = 2
	}
	if cfg.Fulfillment.ActionBurst == 0 {
		cfg.Fulfillment.ActionBurst = 1
	}
}
