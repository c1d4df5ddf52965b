package resolution_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/application/mediator"
	"github.com/andrescamacho/requisition-go/internal/application/resolution"
	"github.com/andrescamacho/requisition-go/internal/application/session"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

var generalStore = shop.Source{
	Name:     "General Store",
	NPC:      "Shop keeper",
	Location: shared.NewWorldPoint(3212, 3246, 0),
	Kind:     shop.MarketKindShop,
}

type fixture struct {
	world  *sandbox.World
	env    *requirement.Environment
	engine *fulfillment.Engine
	store  *store.RequirementStore
	clock  *shared.MockClock
}

func newFixture(t *testing.T, seed sandbox.Seed) *fixture {
	t.Helper()
	seed.Items = append(seed.Items,
		sandbox.ItemSeed{ID: 995, Name: "Coins", Stackable: true},
		sandbox.ItemSeed{ID: 314, Name: "Feather", Stackable: true},
		sandbox.ItemSeed{ID: 1163, Name: "Rune full helm", Slot: shared.EquipmentSlotHead},
		sandbox.ItemSeed{ID: 385, Name: "Shark"},
	)
	seed.Shops = append(seed.Shops, sandbox.ShopSeed{Name: generalStore.Name, Stock: map[string]int{"Feather": 100}})
	w, err := sandbox.NewWorld(seed)
	require.NoError(t, err)

	cfg := fulfillment.DefaultConfig()
	cfg.ActionsPerSecond = 0
	cfg.Shop.Banking = false
	clock := shared.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	engine := fulfillment.NewEngine(w, cfg, fulfillment.WithClock(clock))
	return &fixture{
		world:  w,
		env:    &requirement.Environment{World: w, Shops: engine},
		engine: engine,
		store:  store.NewRequirementStore(),
		clock:  clock,
	}
}

func helm(t *testing.T, p shared.Priority, tc shared.TaskContext) *requirement.ItemRequirement {
	t.Helper()
	r, err := requirement.NewItemRequirement(requirement.ItemSpec{
		ItemID:        1163,
		Name:          "Rune full helm",
		Placement:     requirement.PlacementEquipment,
		EquipmentSlot: shared.EquipmentSlotHead,
		InventorySlot: shared.AnyInventorySlot,
		Priority:      p,
		Rating:        7,
		Context:       tc,
	})
	require.NoError(t, err)
	return r
}

func sharks(t *testing.T, amount int, p shared.Priority, tc shared.TaskContext) *requirement.ItemRequirement {
	t.Helper()
	r, err := requirement.NewItemRequirement(requirement.ItemSpec{
		ItemID:        385,
		Name:          "Shark",
		Amount:        amount,
		Placement:     requirement.PlacementInventory,
		InventorySlot: shared.AnyInventorySlot,
		Priority:      p,
		Rating:        4,
		Context:       tc,
	})
	require.NoError(t, err)
	return r
}

func feathers(t *testing.T, amount int) *requirement.ShopRequirement {
	t.Helper()
	item, err := shop.NewItem(314, "Feather", true, true, generalStore)
	require.NoError(t, err)
	d, err := shop.NewItemDemand(item, amount, 50, 10)
	require.NoError(t, err)
	r, err := requirement.NewShopRequirement(shop.OperationBuy, []*shop.ItemDemand{d},
		shared.PriorityMandatory, 5, shared.TaskContextPreTask, "", requirement.ShopOptions{})
	require.NoError(t, err)
	return r
}

func TestResolve_FulfilsEveryGroupThenExternal(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{Bank: map[string]int{"Rune full helm": 1, "Shark": 10}})
	ctx := context.Background()
	book, err := requirement.NewSpellbookRequirement("LUNAR", shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)
	f.store.Register(ctx, book)
	f.store.Register(ctx, helm(t, shared.PriorityMandatory, shared.TaskContextBoth))
	f.store.Register(ctx, feathers(t, 20))
	f.store.RegisterExternal(ctx, sharks(t, 4, shared.PriorityRecommended, shared.TaskContextPreTask))

	// Act
	report, err := resolution.NewResolver(f.clock).Resolve(ctx, f.store, shared.TaskContextPreTask, f.env)

	// Assert
	require.NoError(t, err)
	assert.False(t, report.Blocked())
	assert.False(t, report.ExternalSkipped)
	assert.Len(t, report.Outcomes, 4)
	assert.Equal(t, 4, report.Fulfilled())
	assert.Equal(t, requirement.KindSpellbook, report.Outcomes[0].Kind)
	assert.Equal(t, "equipment:HEAD", report.Outcomes[1].Group)
	assert.Equal(t, "shop", report.Outcomes[2].Group)
	require.Len(t, report.Phase(resolution.PhaseExternal), 1)

	summary := f.world.Summarize()
	assert.Equal(t, "LUNAR", summary.Spellbook)
	assert.Equal(t, "Rune full helm", summary.Equipment[shared.EquipmentSlotHead])
	assert.Equal(t, 20, summary.Inventory["Feather"])
	assert.Equal(t, 4, summary.Inventory["Shark"])
}

func TestResolve_MandatoryFailureSkipsExternal(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{})
	ctx := context.Background()
	f.store.Register(ctx, helm(t, shared.PriorityMandatory, shared.TaskContextPreTask))
	f.store.RegisterExternal(ctx, sharks(t, 1, shared.PriorityOptional, shared.TaskContextPreTask))

	// Act
	report, err := resolution.NewResolver(f.clock).Resolve(ctx, f.store, shared.TaskContextPreTask, f.env)

	// Assert
	require.NoError(t, err)
	assert.True(t, report.Blocked())
	assert.True(t, report.ExternalSkipped)
	assert.Len(t, report.Failed(), 1)
	assert.Empty(t, report.Phase(resolution.PhaseExternal))
}

func TestResolve_MoreUrgentGoesFirst(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{Bank: map[string]int{"Shark": 5}})
	ctx := context.Background()
	loc, err := requirement.NewLocationRequirement("bank", shared.NewWorldPoint(3093, 3493, 0), 2,
		shared.PriorityOptional, 3, shared.TaskContextPreTask)
	require.NoError(t, err)
	f.store.Register(ctx, loc)
	f.store.Register(ctx, sharks(t, 5, shared.PriorityMandatory, shared.TaskContextPreTask))

	// Act
	report, err := resolution.NewResolver(f.clock).Resolve(ctx, f.store, shared.TaskContextPreTask, f.env)

	// Assert
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, requirement.KindOr, report.Outcomes[0].Kind)
	assert.Equal(t, requirement.KindLocation, report.Outcomes[1].Kind)
}

func TestResolve_AlreadyMetIsNotFulfilledAgain(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{Inventory: map[string]int{"Shark": 3}})
	ctx := context.Background()
	f.store.Register(ctx, sharks(t, 3, shared.PriorityMandatory, shared.TaskContextPostTask))

	// Act
	report, err := resolution.NewResolver(f.clock).Resolve(ctx, f.store, shared.TaskContextPostTask, f.env)

	// Assert
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].AlreadyMet)
}

func TestResolve_RefusesActuationThread(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{})
	ctx := shared.WithActuationThread(context.Background())

	// Act
	_, err := resolution.NewResolver(f.clock).Resolve(ctx, f.store, shared.TaskContextPreTask, f.env)

	// Assert
	assert.ErrorIs(t, err, shared.ErrBlockingOnActuationThread)
}

func TestResolve_CancelledReturnsPartialReport(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{})
	f.store.Register(context.Background(), sharks(t, 1, shared.PriorityMandatory, shared.TaskContextPreTask))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	report, err := resolution.NewResolver(f.clock).Resolve(ctx, f.store, shared.TaskContextPreTask, f.env)

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Outcomes)
}

func TestResolveRequirementsCommand_ThroughMediator(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{Bank: map[string]int{"Shark": 2}})
	f.store.Register(context.Background(), sharks(t, 2, shared.PriorityMandatory, shared.TaskContextPreTask))
	m := mediator.NewMediator()
	m.Use(session.SessionMiddleware())
	require.NoError(t, resolution.RegisterHandlers(m, resolution.NewResolver(f.clock), f.store, f.env, f.engine))

	// Act
	resp, err := m.Send(context.Background(), &resolution.ResolveRequirementsCommand{
		TaskContext: shared.TaskContextPreTask,
		Operation:   "pre-task-setup",
	})

	// Assert
	require.NoError(t, err)
	report, ok := resp.(*resolution.Report)
	require.True(t, ok)
	assert.Equal(t, 1, report.Fulfilled())
}

func TestFulfillShopCommand_ThroughMediator(t *testing.T) {
	// Arrange
	f := newFixture(t, sandbox.Seed{})
	m := mediator.NewMediator()
	require.NoError(t, resolution.RegisterHandlers(m, resolution.NewResolver(f.clock), f.store, f.env, f.engine))

	// Act
	resp, err := m.Send(context.Background(), &resolution.FulfillShopCommand{Requirement: feathers(t, 10)})

	// Assert
	require.NoError(t, err)
	result, ok := resp.(*fulfillment.Result)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, shop.StateAllDone, result.State)
}
