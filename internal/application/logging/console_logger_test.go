package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/application/logging"
)

func TestConsoleLogger_FiltersBelowLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(&buf, "text", "warning")

	// Act
	logger.Log("INFO", "hidden", nil)
	logger.Log("ERROR", "shown", map[string]interface{}{"item": "Feather"})

	// Assert
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[ERROR] shown")
	assert.Contains(t, buf.String(), "item=Feather")
}

func TestConsoleLogger_JSONFormat(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(&buf, "json", "debug").With(map[string]interface{}{"session": "abc"})

	// Act
	logger.Log("DEBUG", "visit", map[string]interface{}{"world": 301})

	// Assert
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visit", entry["message"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "abc", entry["session"])
	assert.EqualValues(t, 301, entry["world"])
}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	// Act
	logger := logging.LoggerFromContext(context.Background())

	// Assert
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Log("INFO", "nothing", nil) })
}
