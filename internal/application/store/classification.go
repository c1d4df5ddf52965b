package store

import (
	"sort"

	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// View is the grouped, read-only picture of the requirements registered
// under one task context. Every group is an OR so callers handle single
// requirements and alternatives the same way.
type View struct {
	Context shared.TaskContext

	Equipment      map[shared.EquipmentSlot]*requirement.LogicalRequirement
	InventorySlots map[int]*requirement.LogicalRequirement
	AnySlot        []*requirement.LogicalRequirement
	Shops          []*requirement.LogicalRequirement
	Loot           []*requirement.LogicalRequirement
	Others         []*requirement.LogicalRequirement

	Conditionals      []*requirement.ConditionalRequirement
	MixedConditionals []*requirement.ConditionalRequirement

	Location       *requirement.LocationRequirement
	Spellbook      *requirement.SpellbookRequirement
	InventorySetup *requirement.InventorySetupRequirement
	RunePouch      *requirement.RunePouchRequirement
}

// LeafCount counts the requirements filed in the view. EITHER items that
// name a slot are counted twice because they sit in two groups.
func (v *View) LeafCount() int {
	n := 0
	for _, g := range v.Equipment {
		n += g.Len()
	}
	for _, g := range v.InventorySlots {
		n += g.Len()
	}
	for _, groups := range [][]*requirement.LogicalRequirement{v.AnySlot, v.Shops, v.Loot, v.Others} {
		for _, g := range groups {
			n += g.Len()
		}
	}
	n += len(v.Conditionals) + len(v.MixedConditionals)
	for _, present := range []bool{v.Location != nil, v.Spellbook != nil, v.InventorySetup != nil, v.RunePouch != nil} {
		if present {
			n++
		}
	}
	return n
}

type snapshot struct {
	version uint64
	views   map[shared.TaskContext]*View
}

// classifier accumulates one context's raw buckets before they are frozen
// into OR-groups
type classifier struct {
	equipment map[shared.EquipmentSlot][]requirement.Requirement
	invSlots  map[int][]requirement.Requirement
	anySlot   []*requirement.LogicalRequirement
	shops     []*requirement.LogicalRequirement
	loot      []*requirement.LogicalRequirement
	others    []*requirement.LogicalRequirement
	pureCond  []*requirement.ConditionalRequirement
	mixedCond []*requirement.ConditionalRequirement
	singles   map[requirement.Kind]requirement.Requirement
}

func newClassifier() *classifier {
	return &classifier{
		equipment: make(map[shared.EquipmentSlot][]requirement.Requirement),
		invSlots:  make(map[int][]requirement.Requirement),
		singles:   make(map[requirement.Kind]requirement.Requirement),
	}
}

// classifyAll files every requirement under its own task context
func classifyAll(reqs []requirement.Requirement) map[shared.TaskContext]*View {
	byContext := make(map[shared.TaskContext]*classifier, len(shared.AllTaskContexts))
	for _, tc := range shared.AllTaskContexts {
		byContext[tc] = newClassifier()
	}
	for _, r := range reqs {
		file(byContext, r, false)
	}

	views := make(map[shared.TaskContext]*View, len(byContext))
	for tc, c := range byContext {
		views[tc] = c.freeze(tc)
	}
	return views
}

// file places r, decomposing OR-groups that cannot be cached as a unit.
// Single-instance kinds only take their slot when registered directly.
func file(byContext map[shared.TaskContext]*classifier, r requirement.Requirement, nested bool) {
	c, ok := byContext[r.TaskContext()]
	if !ok {
		return
	}

	switch t := r.(type) {
	case *requirement.LogicalRequirement:
		if !t.IsPure() {
			for _, child := range t.Children() {
				file(byContext, child, true)
			}
			return
		}
		switch t.ChildKind() {
		case requirement.KindItem:
			c.anySlot = append(c.anySlot, t)
		case requirement.KindShop:
			c.shops = append(c.shops, t)
		case requirement.KindLoot:
			c.loot = append(c.loot, t)
		default:
			c.others = append(c.others, t)
		}

	case *requirement.ItemRequirement:
		switch t.Placement() {
		case requirement.PlacementEquipment:
			c.equipment[t.EquipmentSlot()] = append(c.equipment[t.EquipmentSlot()], t)
		case requirement.PlacementInventory:
			if t.HasFixedSlot() {
				c.invSlots[t.InventorySlot()] = append(c.invSlots[t.InventorySlot()], t)
			} else {
				c.anySlot = append(c.anySlot, singleton(t))
			}
		case requirement.PlacementEither:
			if t.EquipmentSlot().IsSet() {
				c.equipment[t.EquipmentSlot()] = append(c.equipment[t.EquipmentSlot()], t)
			}
			c.anySlot = append(c.anySlot, singleton(t))
		}

	case *requirement.ShopRequirement:
		c.shops = append(c.shops, singleton(t))

	case *requirement.LootRequirement:
		c.loot = append(c.loot, singleton(t))

	case *requirement.ConditionalRequirement:
		if t.IsPureItem() {
			c.pureCond = append(c.pureCond, t)
		} else {
			c.mixedCond = append(c.mixedCond, t)
		}

	default:
		if r.Kind().IsSingleInstance() && !nested {
			c.singles[r.Kind()] = r
			return
		}
		c.others = append(c.others, singleton(r))
	}
}

func singleton(r requirement.Requirement) *requirement.LogicalRequirement {
	g, err := requirement.NewLogicalRequirement(r.TaskContext(), r.Description(), r)
	if err != nil {
		// only reachable with a nil child, which file never passes
		panic(err)
	}
	return g
}

func group(tc shared.TaskContext, children []requirement.Requirement) *requirement.LogicalRequirement {
	sortByImportance(children)
	g, err := requirement.NewLogicalRequirement(tc, "", children...)
	if err != nil {
		panic(err)
	}
	return g
}

func (c *classifier) freeze(tc shared.TaskContext) *View {
	v := &View{
		Context:           tc,
		Equipment:         make(map[shared.EquipmentSlot]*requirement.LogicalRequirement, len(c.equipment)),
		InventorySlots:    make(map[int]*requirement.LogicalRequirement, len(c.invSlots)),
		AnySlot:           sortGroups(c.anySlot),
		Shops:             sortGroups(c.shops),
		Loot:              sortGroups(c.loot),
		Others:            sortGroups(c.others),
		Conditionals:      c.pureCond,
		MixedConditionals: c.mixedCond,
	}
	for slot, children := range c.equipment {
		v.Equipment[slot] = group(tc, children)
	}
	for slot, children := range c.invSlots {
		v.InventorySlots[slot] = group(tc, children)
	}
	sortConditionals(v.Conditionals)
	sortConditionals(v.MixedConditionals)

	v.Location, _ = c.singles[requirement.KindLocation].(*requirement.LocationRequirement)
	v.Spellbook, _ = c.singles[requirement.KindSpellbook].(*requirement.SpellbookRequirement)
	v.InventorySetup, _ = c.singles[requirement.KindInventorySetup].(*requirement.InventorySetupRequirement)
	v.RunePouch, _ = c.singles[requirement.KindRunePouch].(*requirement.RunePouchRequirement)
	return v
}

func sortGroups(groups []*requirement.LogicalRequirement) []*requirement.LogicalRequirement {
	sort.SliceStable(groups, func(i, j int) bool {
		return requirement.MoreImportant(groups[i], groups[j])
	})
	return groups
}

func sortConditionals(conds []*requirement.ConditionalRequirement) {
	sort.SliceStable(conds, func(i, j int) bool {
		return requirement.MoreImportant(conds[i], conds[j])
	})
}
