package plan_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/plan"
	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

func TestLoader_ParseBuildsEveryKind(t *testing.T) {
	// Arrange
	loader := plan.NewLoader(shop.DefaultExchangePricing())

	// Act
	p, err := loader.Parse([]byte(samplePlan))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "feather-run", p.Name)
	assert.Equal(t, shared.TaskContextPreTask, p.Context)
	require.Len(t, p.Requirements, 6)
	require.Len(t, p.External, 1)

	kinds := make([]requirement.Kind, len(p.Requirements))
	for i, r := range p.Requirements {
		kinds[i] = r.Kind()
	}
	assert.Equal(t, []requirement.Kind{
		requirement.KindSpellbook, requirement.KindItem, requirement.KindShop,
		requirement.KindRunePouch, requirement.KindConditional, requirement.KindOr,
	}, kinds)

	assert.Equal(t, shared.PriorityMandatory, p.Requirements[0].Priority())
	assert.Equal(t, shared.PriorityRecommended, p.Requirements[1].Priority())
	assert.Equal(t, shared.TaskContextBoth, p.Requirements[5].TaskContext())
	assert.Equal(t, shared.TaskContextPostTask, p.External[0].TaskContext())
}

func TestLoader_ShopDemandCarriesPricing(t *testing.T) {
	// Arrange
	loader := plan.NewLoader(shop.DefaultExchangePricing())

	// Act
	p, err := loader.Parse([]byte(samplePlan))

	// Assert
	require.NoError(t, err)
	sr, ok := p.Requirements[2].(*requirement.ShopRequirement)
	require.True(t, ok)
	assert.Equal(t, shop.OperationBuy, sr.Operation())
	assert.Equal(t, "Gerrant", sr.Source().Name)
	demands := sr.Demands()
	require.Len(t, demands, 1)
	assert.Equal(t, 100, demands[0].Amount())
	assert.Equal(t, 950, demands[0].MinimumStockForBuying())
	assert.Equal(t, 4, demands[0].Pricing().MaxPrice)
}

func TestLoader_EquipmentSlotFromCatalog(t *testing.T) {
	// Arrange
	loader := plan.NewLoader(shop.DefaultExchangePricing())

	// Act
	p, err := loader.Parse([]byte(samplePlan))

	// Assert
	require.NoError(t, err)
	ir, ok := p.Requirements[1].(*requirement.ItemRequirement)
	require.True(t, ok)
	assert.Equal(t, shared.EquipmentSlotHead, ir.EquipmentSlot())
	assert.Equal(t, shared.AnyInventorySlot, ir.InventorySlot())
	assert.Equal(t, 6, ir.Rating())
}

func TestLoader_SeedIncludesCatalog(t *testing.T) {
	// Arrange
	loader := plan.NewLoader(shop.DefaultExchangePricing())

	// Act
	p, err := loader.Parse([]byte(samplePlan))
	require.NoError(t, err)
	world, err := sandbox.NewWorld(p.Seed)

	// Assert
	require.NoError(t, err)
	assert.Len(t, p.Seed.Items, 5)
	assert.Equal(t, 5000, world.Inventory().Count(context.Background(), 995))
}

func TestLoader_ConditionalFollowsInventory(t *testing.T) {
	// Arrange
	loader := plan.NewLoader(shop.DefaultExchangePricing())
	p, err := loader.Parse([]byte(samplePlan))
	require.NoError(t, err)
	cond, ok := p.Requirements[4].(*requirement.ConditionalRequirement)
	require.True(t, ok)

	world, err := sandbox.NewWorld(p.Seed)
	require.NoError(t, err)
	env := &requirement.Environment{World: world}

	// Act
	step, ok := cond.ActiveStep(context.Background(), env)

	// Assert
	require.True(t, ok)
	assert.Equal(t, "gather", step.Name)
	assert.Equal(t, requirement.KindLoot, step.Then.Kind())
}

func TestLoader_RegisterFilesStandardAndExternal(t *testing.T) {
	// Arrange
	loader := plan.NewLoader(shop.DefaultExchangePricing())
	p, err := loader.Parse([]byte(samplePlan))
	require.NoError(t, err)
	s := store.NewRequirementStore()

	// Act
	added := p.Register(context.Background(), s)

	// Assert
	assert.Equal(t, 7, added)
	assert.Equal(t, 6, s.Size())
	assert.Equal(t, 1, s.ExternalSize())
}

func TestLoader_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "unknown item",
			yaml:    "name: x\nrequirements:\n  - {kind: ITEM, item: Ghost}\n",
			wantErr: plan.ErrUnknownItem,
		},
		{
			name: "bad kind",
			yaml: "name: x\nrequirements:\n  - {kind: TELEPORT}\n",
		},
		{
			name: "missing name",
			yaml: "requirements: []\n",
		},
		{
			name: "unknown field",
			yaml: "name: x\nbogus: 1\n",
		},
		{
			name: "rating out of range",
			yaml: "name: x\nrequirements:\n  - {kind: SPELLBOOK, book: ANCIENT, rating: 11}\n",
		},
		{
			name: "shop without demands",
			yaml: "name: x\nrequirements:\n  - {kind: SHOP, operation: BUY}\n",
		},
	}

	loader := plan.NewLoader(shop.DefaultExchangePricing())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := loader.Parse([]byte(tt.yaml))

			// Assert
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o644))
	loader := plan.NewLoader(shop.DefaultExchangePricing())

	// Act
	p, err := loader.LoadFile(path)
	_, missingErr := loader.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "feather-run", p.Name)
	assert.Error(t, missingErr)
}
