package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/cli"
)

const cliPlan = `
name: cli-run
context: PRE_TASK
items:
  - {id: 995, name: Coins, stackable: true}
  - id: 314
    name: Feather
    stackable: true
    source: {name: Gerrant, kind: SHOP, location: {x: 10, y: 10}}
requirements:
  - {kind: SPELLBOOK, book: ANCIENT, priority: MANDATORY}
  - kind: SHOP
    operation: BUY
    priority: MANDATORY
    demands:
      - {item: Feather, amount: 50, base_stock: 1000, tolerance: 100}
world:
  inventory: {Coins: 1000}
  shops:
    - name: Gerrant
      stock: {Feather: 1100}
`

// setupEnv points the CLI at a throwaway sqlite database and writes plan
func setupEnv(t *testing.T, plan string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RQ_DATABASE_TYPE", "sqlite")
	t.Setenv("RQ_DATABASE_PATH", filepath.Join(dir, "requisition.db"))
	t.Setenv("RQ_LOGGING_LEVEL", "error")
	t.Setenv("RQ_FULFILLMENT_ACTIONS_PER_SECOND", "1000")

	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(plan), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlanInspect_PrintsTree(t *testing.T) {
	// Arrange
	path := setupEnv(t, cliPlan)

	// Act
	out, err := run(t, "plan", "inspect", "--plan", path, "--no-color", "--status")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Plan cli-run (PRE_TASK)")
	assert.Contains(t, out, "Standard (2)")
	assert.Contains(t, out, "[SHOP MANDATORY]")
	assert.Contains(t, out, "[ ] use ANCIENT spellbook")
	assert.Contains(t, out, "External (0)")
}

func TestFulfill_ResolvesPlanAndRecordsTrades(t *testing.T) {
	// Arrange
	path := setupEnv(t, cliPlan)

	// Act
	out, err := run(t, "fulfill", "--plan", path)

	// Assert
	require.NoError(t, err, out)
	assert.Contains(t, out, "2/2 fulfilled")
	assert.Contains(t, out, "Feather")

	trades, err := run(t, "trades", "list")
	require.NoError(t, err)
	assert.Contains(t, trades, "Feather")
	assert.Contains(t, trades, "BUY")
}

func TestFulfill_MandatoryFailureExitsWithError(t *testing.T) {
	// Arrange
	unreachable := cliPlan + "  unreachable: [{x: 10, y: 10}]\n"
	path := setupEnv(t, unreachable)

	// Act
	out, err := run(t, "fulfill", "--plan", path)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandatory requirements failed")
	assert.Contains(t, out, "BLOCKED")
}

func TestLedgerList_EmptyDatabase(t *testing.T) {
	// Arrange
	setupEnv(t, cliPlan)

	// Act
	out, err := run(t, "ledger", "list")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "No stored ledgers")
}

func TestConfigShow_ReflectsEnvironment(t *testing.T) {
	// Arrange
	setupEnv(t, cliPlan)

	// Act
	out, err := run(t, "config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Type: sqlite")
	assert.Contains(t, out, "Level:  error")
}

func TestFulfill_RequiresPlanFlag(t *testing.T) {
	// Arrange
	setupEnv(t, cliPlan)

	// Act
	_, err := run(t, "fulfill")

	// Assert
	require.Error(t, err)
}
