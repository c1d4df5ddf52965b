package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func validConfig() *config.Config {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	return cfg
}

func TestLoadConfig_FileEnvAndDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
database:
  type: sqlite
  path: ":memory:"
logging:
  level: warn
fulfillment:
  exchange:
    offer_timeout: 30s
  shop:
    disable_banking: true
    hop_strategy: best
`)
	t.Setenv("RQ_LOGGING_LEVEL", "debug")
	t.Setenv("RQ_FULFILLMENT_SHOP_MAX_VISITS", "7")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Fulfillment.Exchange.OfferTimeout)
	assert.Equal(t, 2*time.Second, cfg.Fulfillment.Exchange.PollInterval)
	assert.Equal(t, 7, cfg.Fulfillment.Shop.MaxVisits)
	assert.True(t, cfg.Database.InMemory())

	engine := cfg.Fulfillment.EngineConfig()
	assert.False(t, engine.Shop.Banking)
	assert.True(t, engine.Shop.WorldHopping)
	assert.Equal(t, "best", string(engine.Shop.HopStrategy))
	assert.Equal(t, "Coins", engine.Shop.CoinName)
}

func TestLoadConfig_RejectsInvalidFile(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
logging:
  level: loud
`)

	// Act
	_, err := config.LoadConfig(path)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
}

func TestValidateConfig_CustomRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{
			name:   "poll interval longer than offer timeout",
			mutate: func(c *config.Config) { c.Fulfillment.Exchange.PollInterval = 5 * time.Minute },
			field:  "PollInterval",
		},
		{
			name: "postgres without url or host",
			mutate: func(c *config.Config) {
				c.Database.Type = "postgres"
				c.Database.Host = ""
			},
			field: "Host",
		},
		{
			name:   "metrics path without slash",
			mutate: func(c *config.Config) { c.Metrics.Path = "metrics" },
			field:  "Path",
		},
		{
			name:   "unknown hop strategy",
			mutate: func(c *config.Config) { c.Fulfillment.Shop.HopStrategy = "random" },
			field:  "HopStrategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := validConfig()
			tt.mutate(cfg)

			// Act
			err := config.ValidateConfig(cfg)

			// Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateConfig_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, config.ValidateConfig(validConfig()))
}

func TestDatabaseConfig_DSNAndRedaction(t *testing.T) {
	// Arrange
	pg := config.DatabaseConfig{
		Type: "postgres", Host: "db", Port: 5432, User: "rq",
		Password: "secret", Name: "requisition", SSLMode: "disable",
	}
	withURL := pg
	withURL.URL = "postgresql://rq:secret@db/requisition"

	// Act
	redacted := withURL.Redacted()

	// Assert
	assert.Equal(t, "host=db port=5432 user=rq password=secret dbname=requisition sslmode=disable", pg.DSN())
	assert.Equal(t, withURL.URL, withURL.DSN())
	assert.Equal(t, ":memory:", config.DatabaseConfig{Type: "sqlite"}.DSN())
	assert.Equal(t, "***", redacted.Password)
	assert.Equal(t, "***", redacted.URL)
	assert.Equal(t, "secret", withURL.Password)
}

func TestMetricsConfig_Endpoint(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "localhost:9090", cfg.Metrics.Address())
	assert.Equal(t, "http://localhost:9090/metrics", cfg.Metrics.Endpoint())
}
