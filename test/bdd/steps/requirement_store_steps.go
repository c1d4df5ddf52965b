package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

type requirementStoreContext struct {
	store   *store.RequirementStore
	pending []requirement.Requirement
	results []bool
	nextID  int
}

func (rc *requirementStoreContext) reset() {
	rc.store = nil
	rc.pending = nil
	rc.results = nil
	rc.nextID = 1000
}

func (rc *requirementStoreContext) anEmptyRequirementStore() error {
	rc.store = store.NewRequirementStore()
	return nil
}

func (rc *requirementStoreContext) anEquipmentRequirement(name, slot, tc string) error {
	equipmentSlot, err := shared.ParseEquipmentSlot(slot)
	if err != nil {
		return err
	}
	taskContext, err := shared.ParseTaskContext(tc)
	if err != nil {
		return err
	}
	rc.nextID++
	req, err := requirement.NewItemRequirement(requirement.ItemSpec{
		ItemID:        rc.nextID,
		Name:          name,
		Placement:     requirement.PlacementEquipment,
		EquipmentSlot: equipmentSlot,
		InventorySlot: shared.AnyInventorySlot,
		Priority:      shared.PriorityMandatory,
		Rating:        5,
		Context:       taskContext,
	})
	if err != nil {
		return err
	}
	rc.pending = append(rc.pending, req)
	return nil
}

func (rc *requirementStoreContext) aSpellbookRequirement(book, tc string) error {
	taskContext, err := shared.ParseTaskContext(tc)
	if err != nil {
		return err
	}
	req, err := requirement.NewSpellbookRequirement(book, shared.PriorityMandatory, 5, taskContext)
	if err != nil {
		return err
	}
	rc.pending = append(rc.pending, req)
	return nil
}

func (rc *requirementStoreContext) theRequirementsAreRegistered() error {
	for _, req := range rc.pending {
		rc.results = append(rc.results, rc.store.Register(context.Background(), req))
	}
	return nil
}

func (rc *requirementStoreContext) theRequirementIsRegisteredTwice() error {
	if len(rc.pending) != 1 {
		return fmt.Errorf("expected one pending requirement, got %d", len(rc.pending))
	}
	for i := 0; i < 2; i++ {
		rc.results = append(rc.results, rc.store.Register(context.Background(), rc.pending[0]))
	}
	return nil
}

func (rc *requirementStoreContext) theViewIsReadTimes(tc string, times int) error {
	taskContext, err := shared.ParseTaskContext(tc)
	if err != nil {
		return err
	}
	for i := 0; i < times; i++ {
		rc.store.View(taskContext)
	}
	return nil
}

func (rc *requirementStoreContext) theStoreHolds(expected int) error {
	if got := rc.store.Size(); got != expected {
		return fmt.Errorf("expected store size %d, got %d", expected, got)
	}
	return nil
}

func (rc *requirementStoreContext) theViewGroupsItemsUnderSlot(tc string, expected int, slot string) error {
	taskContext, err := shared.ParseTaskContext(tc)
	if err != nil {
		return err
	}
	group, ok := rc.store.EquipmentRequirements(taskContext)[shared.EquipmentSlot(strings.ToUpper(slot))]
	if !ok {
		return fmt.Errorf("no group under slot %s", slot)
	}
	if group.Len() != expected {
		return fmt.Errorf("expected %d items under %s, got %d", expected, slot, group.Len())
	}
	return nil
}

func (rc *requirementStoreContext) theActiveSpellbookIs(tc, book string) error {
	taskContext, err := shared.ParseTaskContext(tc)
	if err != nil {
		return err
	}
	active := rc.store.ActiveSpellbook(taskContext)
	if active == nil {
		return fmt.Errorf("no active spellbook for %s", tc)
	}
	if active.Book() != book {
		return fmt.Errorf("expected spellbook %s, got %s", book, active.Book())
	}
	return nil
}

func (rc *requirementStoreContext) theSecondRegistrationIsRefused() error {
	if len(rc.results) != 2 || !rc.results[0] || rc.results[1] {
		return fmt.Errorf("expected registrations [true false], got %v", rc.results)
	}
	return nil
}

func (rc *requirementStoreContext) theViewsWereRebuilt(expected int) error {
	if got := rc.store.Rebuilds(); got != uint64(expected) {
		return fmt.Errorf("expected %d rebuilds, got %d", expected, got)
	}
	return nil
}

// InitializeRequirementStoreScenario registers the store steps
func InitializeRequirementStoreScenario(ctx *godog.ScenarioContext) {
	rc := &requirementStoreContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		rc.reset()
		return c, nil
	})

	// Given steps
	ctx.Step(`^an empty requirement store$`, rc.anEmptyRequirementStore)
	ctx.Step(`^an equipment requirement for "([^"]*)" in the "([^"]*)" slot for "([^"]*)"$`, rc.anEquipmentRequirement)
	ctx.Step(`^a spellbook requirement for "([^"]*)" for "([^"]*)"$`, rc.aSpellbookRequirement)

	// When steps
	ctx.Step(`^the requirements are registered$`, rc.theRequirementsAreRegistered)
	ctx.Step(`^the requirement is registered twice$`, rc.theRequirementIsRegisteredTwice)
	ctx.Step(`^the "([^"]*)" view is read (\d+) times$`, rc.theViewIsReadTimes)

	// Then steps
	ctx.Step(`^the store holds (\d+) requirements?$`, rc.theStoreHolds)
	ctx.Step(`^the "([^"]*)" view groups (\d+) items under the "([^"]*)" slot$`, rc.theViewGroupsItemsUnderSlot)
	ctx.Step(`^the active "([^"]*)" spellbook is "([^"]*)"$`, rc.theActiveSpellbookIs)
	ctx.Step(`^the second registration is refused$`, rc.theSecondRegistrationIsRefused)
	ctx.Step(`^the views were rebuilt (\d+) times?$`, rc.theViewsWereRebuilt)
}
