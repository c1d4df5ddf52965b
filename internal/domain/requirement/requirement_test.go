package requirement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

func testEnv(t *testing.T, seed sandbox.Seed) (*requirement.Environment, *sandbox.World) {
	t.Helper()
	seed.Items = append(seed.Items,
		sandbox.ItemSeed{ID: 1163, Name: "Rune full helm", Slot: shared.EquipmentSlotHead},
		sandbox.ItemSeed{ID: 1153, Name: "Iron full helm", Slot: shared.EquipmentSlotHead},
		sandbox.ItemSeed{ID: 385, Name: "Shark"},
		sandbox.ItemSeed{ID: 556, Name: "Air rune", Stackable: true},
		sandbox.ItemSeed{ID: 526, Name: "Bones"},
	)
	w, err := sandbox.NewWorld(seed)
	require.NoError(t, err)
	return &requirement.Environment{World: w}, w
}

func item(t *testing.T, spec requirement.ItemSpec) *requirement.ItemRequirement {
	t.Helper()
	if spec.Priority == "" {
		spec.Priority = shared.PriorityMandatory
	}
	if spec.Context == "" {
		spec.Context = shared.TaskContextPreTask
	}
	if spec.Placement == "" {
		spec.Placement = requirement.PlacementInventory
	}
	if spec.InventorySlot == 0 && spec.Placement != requirement.PlacementInventory {
		spec.InventorySlot = shared.AnyInventorySlot
	}
	r, err := requirement.NewItemRequirement(spec)
	require.NoError(t, err)
	return r
}

func TestNewItemRequirement_Validation(t *testing.T) {
	tests := []struct {
		name string
		spec requirement.ItemSpec
	}{
		{"missing id", requirement.ItemSpec{Name: "x", Placement: requirement.PlacementInventory, Priority: shared.PriorityMandatory, Context: shared.TaskContextPreTask}},
		{"rating above ten", requirement.ItemSpec{ItemID: 1, Name: "x", Placement: requirement.PlacementInventory, Rating: 11, Priority: shared.PriorityMandatory, Context: shared.TaskContextPreTask}},
		{"equipment without slot", requirement.ItemSpec{ItemID: 1, Name: "x", Placement: requirement.PlacementEquipment, InventorySlot: shared.AnyInventorySlot, Priority: shared.PriorityMandatory, Context: shared.TaskContextPreTask}},
		{"unknown priority", requirement.ItemSpec{ItemID: 1, Name: "x", Placement: requirement.PlacementInventory, Priority: "URGENT", Context: shared.TaskContextPreTask}},
		{"inventory slot out of range", requirement.ItemSpec{ItemID: 1, Name: "x", Placement: requirement.PlacementInventory, InventorySlot: 28, Priority: shared.PriorityMandatory, Context: shared.TaskContextPreTask}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := requirement.NewItemRequirement(tt.spec)

			// Assert
			assert.Error(t, err)
		})
	}
}

func TestItemRequirement_FulfillWithdrawsAndEquips(t *testing.T) {
	// Arrange
	env, w := testEnv(t, sandbox.Seed{Bank: map[string]int{"Rune full helm": 1}})
	helm := item(t, requirement.ItemSpec{
		ItemID:        1163,
		Name:          "Rune full helm",
		Placement:     requirement.PlacementEquipment,
		EquipmentSlot: shared.EquipmentSlotHead,
		InventorySlot: shared.AnyInventorySlot,
	})
	ctx := context.Background()

	// Act
	before := helm.IsFulfilled(ctx, env)
	ok := helm.Fulfill(ctx, env)

	// Assert
	assert.False(t, before)
	assert.True(t, ok)
	assert.Equal(t, "Rune full helm", w.Summarize().Equipment[shared.EquipmentSlotHead])
}

func TestItemRequirement_FulfillFailsWhenBankIsShort(t *testing.T) {
	// Arrange
	env, _ := testEnv(t, sandbox.Seed{Bank: map[string]int{"Shark": 2}})
	sharks := item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", Amount: 5, InventorySlot: shared.AnyInventorySlot})

	// Act
	ok := sharks.Fulfill(context.Background(), env)

	// Assert
	assert.False(t, ok)
}

func TestItemRequirement_FulfillWalksToBankFirst(t *testing.T) {
	// Arrange
	booth := shared.NewWorldPoint(3185, 3436, 0)
	env, w := testEnv(t, sandbox.Seed{
		Position:     shared.NewWorldPoint(3222, 3218, 0),
		Bank:         map[string]int{"Shark": 3},
		BankLocation: booth,
	})
	sharks := item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", Amount: 3, InventorySlot: shared.AnyInventorySlot})

	// Act
	ok := sharks.Fulfill(context.Background(), env)

	// Assert
	assert.True(t, ok)
	summary := w.Summarize()
	assert.Equal(t, booth, summary.Position)
	assert.Equal(t, 3, summary.Inventory["Shark"])
}

func TestItemRequirement_FulfillFailsWhenBankUnreachable(t *testing.T) {
	// Arrange
	booth := shared.NewWorldPoint(3185, 3436, 0)
	env, w := testEnv(t, sandbox.Seed{
		Bank:         map[string]int{"Shark": 3},
		BankLocation: booth,
		Unreachable:  []shared.WorldPoint{booth},
	})
	sharks := item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", Amount: 3, InventorySlot: shared.AnyInventorySlot})

	// Act
	ok := sharks.Fulfill(context.Background(), env)

	// Assert
	assert.False(t, ok)
	assert.Equal(t, 3, w.Summarize().Bank["Shark"])
}

func TestItemRequirement_EitherAcceptsWornOrCarried(t *testing.T) {
	// Arrange
	env, _ := testEnv(t, sandbox.Seed{Equipment: map[shared.EquipmentSlot]string{shared.EquipmentSlotHead: "Rune full helm"}})
	either := item(t, requirement.ItemSpec{
		ItemID:        1163,
		Name:          "Rune full helm",
		Placement:     requirement.PlacementEither,
		EquipmentSlot: shared.EquipmentSlotHead,
		InventorySlot: shared.AnyInventorySlot,
	})

	// Act & Assert
	assert.True(t, either.IsFulfilled(context.Background(), env))
	assert.True(t, either.IsFlexible())
}

func TestLogicalRequirement_MergesPriorityAndRating(t *testing.T) {
	// Arrange
	runeHelm := item(t, requirement.ItemSpec{ItemID: 1163, Name: "Rune full helm", Placement: requirement.PlacementEquipment,
		EquipmentSlot: shared.EquipmentSlotHead, InventorySlot: shared.AnyInventorySlot, Priority: shared.PriorityOptional, Rating: 8})
	ironHelm := item(t, requirement.ItemSpec{ItemID: 1153, Name: "Iron full helm", Placement: requirement.PlacementEquipment,
		EquipmentSlot: shared.EquipmentSlotHead, InventorySlot: shared.AnyInventorySlot, Priority: shared.PriorityMandatory, Rating: 6})

	// Act
	or, err := requirement.NewLogicalRequirement(shared.TaskContextPreTask, "", runeHelm, ironHelm)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, shared.PriorityMandatory, or.Priority())
	assert.Equal(t, 14, or.Rating())
	assert.Equal(t, requirement.KindItem, or.ChildKind())
	assert.Equal(t, []int{1153, 1163}, or.ItemIDs())
}

func TestLogicalRequirement_KeyIgnoresChildOrder(t *testing.T) {
	// Arrange
	a := item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", InventorySlot: shared.AnyInventorySlot})
	b := item(t, requirement.ItemSpec{ItemID: 526, Name: "Bones", InventorySlot: shared.AnyInventorySlot})

	// Act
	ab, err1 := requirement.NewLogicalRequirement(shared.TaskContextPreTask, "", a, b)
	ba, err2 := requirement.NewLogicalRequirement(shared.TaskContextPreTask, "", b, a)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, ab.Key(), ba.Key())
}

func TestLogicalRequirement_RejectsChildFromOtherContext(t *testing.T) {
	// Arrange
	pre := item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", InventorySlot: shared.AnyInventorySlot})
	post := item(t, requirement.ItemSpec{ItemID: 526, Name: "Bones", InventorySlot: shared.AnyInventorySlot,
		Context: shared.TaskContextPostTask})

	// Act
	or, err := requirement.NewLogicalRequirement(shared.TaskContextPreTask, "", pre, post)

	// Assert
	assert.ErrorIs(t, err, requirement.ErrContextMismatch)
	assert.Nil(t, or)
}

func TestLogicalRequirement_FulfillStopsAtFirstSuccess(t *testing.T) {
	// Arrange
	env, w := testEnv(t, sandbox.Seed{Bank: map[string]int{"Iron full helm": 1}})
	runeHelm := item(t, requirement.ItemSpec{ItemID: 1163, Name: "Rune full helm", Placement: requirement.PlacementEquipment,
		EquipmentSlot: shared.EquipmentSlotHead, InventorySlot: shared.AnyInventorySlot, Rating: 9})
	ironHelm := item(t, requirement.ItemSpec{ItemID: 1153, Name: "Iron full helm", Placement: requirement.PlacementEquipment,
		EquipmentSlot: shared.EquipmentSlotHead, InventorySlot: shared.AnyInventorySlot, Rating: 4})
	or, err := requirement.NewLogicalRequirement(shared.TaskContextPreTask, "", ironHelm, runeHelm)
	require.NoError(t, err)

	// Act
	ok := or.Fulfill(context.Background(), env)

	// Assert
	assert.True(t, ok)
	assert.Equal(t, "Iron full helm", w.Summarize().Equipment[shared.EquipmentSlotHead])
}

func TestSpellbookRequirement_Switches(t *testing.T) {
	// Arrange
	env, w := testEnv(t, sandbox.Seed{})
	book, err := requirement.NewSpellbookRequirement("ANCIENT", shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)

	// Act
	ok := book.Fulfill(context.Background(), env)

	// Assert
	assert.True(t, ok)
	assert.Equal(t, "ANCIENT", w.Summarize().Spellbook)
}

func TestLocationRequirement_WalksIntoArea(t *testing.T) {
	// Arrange
	env, _ := testEnv(t, sandbox.Seed{Position: shared.NewWorldPoint(3200, 3200, 0)})
	target := shared.NewWorldPoint(3093, 3493, 0)
	loc, err := requirement.NewLocationRequirement("Edgeville", target, 3, shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)
	ctx := context.Background()

	// Act
	before := loc.IsFulfilled(ctx, env)
	ok := loc.Fulfill(ctx, env)

	// Assert
	assert.False(t, before)
	assert.True(t, ok)
}

func TestLocationRequirement_UnreachableFails(t *testing.T) {
	// Arrange
	target := shared.NewWorldPoint(3093, 3493, 0)
	env, _ := testEnv(t, sandbox.Seed{Unreachable: []shared.WorldPoint{target}})
	loc, err := requirement.NewLocationRequirement("Edgeville", target, 3, shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)

	// Act
	ok := loc.Fulfill(context.Background(), env)

	// Assert
	assert.False(t, ok)
}

func TestRunePouchRequirement_FillsFromInventoryThenBank(t *testing.T) {
	// Arrange
	env, w := testEnv(t, sandbox.Seed{
		Inventory: map[string]int{"Air rune": 100},
		Bank:      map[string]int{"Air rune": 500},
	})
	pouch, err := requirement.NewRunePouchRequirement(map[int]int{556: 300}, shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)

	// Act
	ok := pouch.Fulfill(context.Background(), env)

	// Assert
	assert.True(t, ok)
	assert.Zero(t, w.Summarize().Inventory["Air rune"])
	assert.Equal(t, 300, w.RunePouch().Count(context.Background(), 556))
}

func TestInventorySetupRequirement_NeedsEveryItem(t *testing.T) {
	// Arrange
	env, _ := testEnv(t, sandbox.Seed{Inventory: map[string]int{"Shark": 3}, Bank: map[string]int{"Bones": 2}})
	setup, err := requirement.NewInventorySetupRequirement("slayer", []*requirement.ItemRequirement{
		item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", Amount: 3, InventorySlot: shared.AnyInventorySlot}),
		item(t, requirement.ItemSpec{ItemID: 526, Name: "Bones", Amount: 2, InventorySlot: shared.AnyInventorySlot}),
	}, shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)
	ctx := context.Background()

	// Act
	before := setup.IsFulfilled(ctx, env)
	ok := setup.Fulfill(ctx, env)

	// Assert
	assert.False(t, before)
	assert.True(t, ok)
}

func TestLootRequirement_MarksSession(t *testing.T) {
	// Arrange
	env, _ := testEnv(t, sandbox.Seed{Ground: map[string]int{"Bones": 2}})
	loot, err := requirement.NewLootRequirement([]int{526}, 2, 5, shared.PriorityOptional, 2, shared.TaskContextPostTask)
	require.NoError(t, err)
	session := shared.NewSessionContext("post-task")
	ctx := shared.WithSessionContext(context.Background(), session)

	// Act
	ok := loot.Fulfill(ctx, env)

	// Assert
	assert.True(t, ok)
	assert.True(t, session.LootedThisCycle())
}

func TestConditionalRequirement_OnlyActiveStepCounts(t *testing.T) {
	// Arrange
	env, _ := testEnv(t, sandbox.Seed{Inventory: map[string]int{"Shark": 1}})
	hasBones := func(ctx context.Context, env *requirement.Environment) bool {
		return env.World.Inventory().Count(ctx, 526) > 0
	}
	bury := item(t, requirement.ItemSpec{ItemID: 526, Name: "Bones", Amount: 5, InventorySlot: shared.AnyInventorySlot})
	eat := item(t, requirement.ItemSpec{ItemID: 385, Name: "Shark", InventorySlot: shared.AnyInventorySlot})
	cond, err := requirement.NewConditionalRequirement("food-or-bones", []requirement.Step{
		{Name: "bury", When: hasBones, Then: bury},
		{Name: "eat", Then: eat},
	}, shared.PriorityMandatory, 5, shared.TaskContextPreTask)
	require.NoError(t, err)
	ctx := context.Background()

	// Act
	step, ok := cond.ActiveStep(ctx, env)

	// Assert
	require.True(t, ok)
	assert.Equal(t, "eat", step.Name)
	assert.True(t, cond.IsFulfilled(ctx, env))
	assert.True(t, cond.IsPureItem())
}

func TestMoreImportant_OrdersByPriorityThenRating(t *testing.T) {
	// Arrange
	optionalHigh := item(t, requirement.ItemSpec{ItemID: 1, Name: "a", InventorySlot: shared.AnyInventorySlot, Priority: shared.PriorityOptional, Rating: 10})
	mandatoryLow := item(t, requirement.ItemSpec{ItemID: 2, Name: "b", InventorySlot: shared.AnyInventorySlot, Priority: shared.PriorityMandatory, Rating: 1})
	mandatoryHigh := item(t, requirement.ItemSpec{ItemID: 3, Name: "c", InventorySlot: shared.AnyInventorySlot, Priority: shared.PriorityMandatory, Rating: 7})

	// Act & Assert
	assert.True(t, requirement.MoreImportant(mandatoryLow, optionalHigh))
	assert.True(t, requirement.MoreImportant(mandatoryHigh, mandatoryLow))
	assert.False(t, requirement.MoreImportant(optionalHigh, mandatoryHigh))
}
