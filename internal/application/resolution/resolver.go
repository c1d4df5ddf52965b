package resolution

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/requisition-go/internal/application/logging"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// equipmentOrder is the order worn items are put on
var equipmentOrder = []shared.EquipmentSlot{
	shared.EquipmentSlotWeapon, shared.EquipmentSlotShield, shared.EquipmentSlotHead,
	shared.EquipmentSlotBody, shared.EquipmentSlotLegs, shared.EquipmentSlotCape,
	shared.EquipmentSlotAmulet, shared.EquipmentSlotGloves, shared.EquipmentSlotBoots,
	shared.EquipmentSlotRing, shared.EquipmentSlotAmmo,
}

// unit is one thing the resolver checks and fulfils
type unit struct {
	group string
	req   requirement.Requirement
}

// Resolver walks a store's grouped views and makes every requirement hold.
//
// Resolution order:
//  1. Single-instance requirements (location, spellbook, inventory setup, rune pouch)
//  2. Equipment slots, fixed inventory slots, then any-slot items
//  3. Shop purchases and sales, loot, conditionals
//  4. External requirements, only once every standard requirement holds
//
// Within that order, more urgent priorities go first.
type Resolver struct {
	clock shared.Clock
}

// NewResolver creates a resolver; a nil clock uses the real clock
func NewResolver(clock shared.Clock) *Resolver {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Resolver{clock: clock}
}

// Resolve fulfils the requirements registered for tc. Requirements filed
// under BOTH are included for PRE_TASK and POST_TASK.
//
// Returns:
//   - Report with one outcome per unit, in resolution order
//   - ErrBlockingOnActuationThread when called from the actuation thread
//   - ctx.Err() when cancelled; the partial report is still returned
func (r *Resolver) Resolve(ctx context.Context, s *store.RequirementStore, tc shared.TaskContext, env *requirement.Environment) (*Report, error) {
	if shared.IsActuationThread(ctx) {
		return nil, shared.ErrBlockingOnActuationThread
	}
	if s == nil || env == nil {
		return nil, fmt.Errorf("store and environment are required")
	}
	if _, err := shared.ParseTaskContext(string(tc)); err != nil {
		return nil, err
	}

	logger := logging.LoggerFromContext(ctx)
	start := r.clock.Now()
	report := &Report{TaskContext: tc}
	defer func() {
		report.Duration = r.clock.Now().Sub(start)
	}()

	// Step 1: Standard requirements from the grouped views
	units := standardUnits(s, tc)
	logger.Log("INFO", "Resolving requirements", map[string]interface{}{
		"task_context": string(tc),
		"standard":     len(units),
		"external":     s.ExternalSize(),
	})
	if err := r.resolveAll(ctx, env, units, PhaseStandard, report); err != nil {
		return report, err
	}

	// Step 2: External requirements once the standard phase fully holds
	if len(report.Failed()) > 0 {
		report.ExternalSkipped = true
		logger.Log("WARNING", "Skipping external requirements", map[string]interface{}{
			"task_context": string(tc),
			"failed":       len(report.Failed()),
		})
		return report, nil
	}
	if err := r.resolveAll(ctx, env, externalUnits(s, tc), PhaseExternal, report); err != nil {
		return report, err
	}

	logger.Log("INFO", "Requirements resolved", map[string]interface{}{
		"task_context": string(tc),
		"fulfilled":    report.Fulfilled(),
		"failed":       len(report.Failed()),
		"blocked":      report.Blocked(),
	})
	return report, nil
}

func (r *Resolver) resolveAll(ctx context.Context, env *requirement.Environment, units []unit, phase Phase, report *Report) error {
	logger := logging.LoggerFromContext(ctx)
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		started := r.clock.Now()
		outcome := Outcome{
			Key:         u.req.Key(),
			Kind:        u.req.Kind(),
			Group:       u.group,
			Phase:       phase,
			Priority:    u.req.Priority(),
			Description: u.req.Description(),
		}
		if u.req.IsFulfilled(ctx, env) {
			outcome.AlreadyMet = true
			outcome.Fulfilled = true
		} else {
			outcome.Fulfilled = u.req.Fulfill(ctx, env)
		}
		outcome.Duration = r.clock.Now().Sub(started)
		report.Outcomes = append(report.Outcomes, outcome)

		if !outcome.Fulfilled {
			level := "WARNING"
			if outcome.Blocking() {
				level = "ERROR"
			}
			logger.Log(level, "Requirement not fulfilled", map[string]interface{}{
				"requirement": outcome.Key.String(),
				"group":       u.group,
				"priority":    string(outcome.Priority),
			})
		}
	}
	return nil
}

// standardUnits flattens the views for tc (and BOTH) into resolution order
func standardUnits(s *store.RequirementStore, tc shared.TaskContext) []unit {
	views := []*store.View{s.View(tc)}
	if tc != shared.TaskContextBoth {
		views = append(views, s.View(shared.TaskContextBoth))
	}

	var units []unit
	seen := make(map[string]bool)
	add := func(group string, req requirement.Requirement) {
		if req == nil {
			return
		}
		key := req.Key().String()
		if seen[key] {
			return
		}
		seen[key] = true
		units = append(units, unit{group: group, req: req})
	}

	for _, v := range views {
		if v.Location != nil {
			add("location", v.Location)
		}
		if v.Spellbook != nil {
			add("spellbook", v.Spellbook)
		}
		if v.InventorySetup != nil {
			add("inventory_setup", v.InventorySetup)
		}
		if v.RunePouch != nil {
			add("rune_pouch", v.RunePouch)
		}
	}
	for _, v := range views {
		for _, slot := range equipmentOrder {
			if g, ok := v.Equipment[slot]; ok {
				add("equipment:"+string(slot), g)
			}
		}
	}
	for _, v := range views {
		slots := make([]int, 0, len(v.InventorySlots))
		for i := range v.InventorySlots {
			slots = append(slots, i)
		}
		sort.Ints(slots)
		for _, i := range slots {
			add(fmt.Sprintf("inventory:%d", i), v.InventorySlots[i])
		}
	}
	for _, v := range views {
		for _, g := range v.AnySlot {
			add("any_slot", g)
		}
	}
	for _, v := range views {
		for _, g := range v.Shops {
			add("shop", g)
		}
		for _, g := range v.Loot {
			add("loot", g)
		}
		for _, c := range v.Conditionals {
			add("conditional", c)
		}
		for _, c := range v.MixedConditionals {
			add("conditional", c)
		}
		for _, g := range v.Others {
			add("other", g)
		}
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].req.Priority().MoreUrgentThan(units[j].req.Priority())
	})
	return units
}

// externalUnits returns the external requirements relevant to tc
func externalUnits(s *store.RequirementStore, tc shared.TaskContext) []unit {
	var units []unit
	for _, req := range s.External() {
		if !req.TaskContext().AppliesTo(tc) {
			continue
		}
		units = append(units, unit{group: "external", req: req})
	}
	sort.SliceStable(units, func(i, j int) bool {
		return requirement.MoreImportant(units[i].req, units[j].req)
	})
	return units
}
