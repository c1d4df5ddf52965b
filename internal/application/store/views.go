package store

import (
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// current returns the snapshot matching the latest version, rebuilding it
// when a mutation happened since the last read
func (s *RequirementStore) current() *snapshot {
	if snap := s.snapshot.Load(); snap != nil && snap.version == s.version.Load() {
		return snap
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if snap := s.snapshot.Load(); snap != nil && snap.version == s.version.Load() {
		return snap
	}

	s.mu.RLock()
	version := s.version.Load()
	reqs := make([]requirement.Requirement, 0, len(s.standard))
	for _, r := range s.standard {
		reqs = append(reqs, r)
	}
	s.mu.RUnlock()

	snap := &snapshot{version: version, views: classifyAll(reqs)}
	s.snapshot.Store(snap)
	s.rebuilds.Add(1)
	return snap
}

// View returns the grouped view for exactly tc. The returned value is
// shared between readers and must not be modified.
func (s *RequirementStore) View(tc shared.TaskContext) *View {
	if v, ok := s.current().views[tc]; ok {
		return v
	}
	return &View{
		Context:        tc,
		Equipment:      map[shared.EquipmentSlot]*requirement.LogicalRequirement{},
		InventorySlots: map[int]*requirement.LogicalRequirement{},
	}
}

// EquipmentRequirements returns the OR-groups per equipment slot for tc
func (s *RequirementStore) EquipmentRequirements(tc shared.TaskContext) map[shared.EquipmentSlot]*requirement.LogicalRequirement {
	src := s.View(tc).Equipment
	out := make(map[shared.EquipmentSlot]*requirement.LogicalRequirement, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// InventorySlotRequirements returns the OR-groups per fixed inventory slot for tc
func (s *RequirementStore) InventorySlotRequirements(tc shared.TaskContext) map[int]*requirement.LogicalRequirement {
	src := s.View(tc).InventorySlots
	out := make(map[int]*requirement.LogicalRequirement, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// AnySlotRequirements returns flexible item groups for tc
func (s *RequirementStore) AnySlotRequirements(tc shared.TaskContext) []*requirement.LogicalRequirement {
	return copyGroups(s.View(tc).AnySlot)
}

// ShopRequirements returns shop groups for tc
func (s *RequirementStore) ShopRequirements(tc shared.TaskContext) []*requirement.LogicalRequirement {
	return copyGroups(s.View(tc).Shops)
}

// LootRequirements returns loot groups for tc
func (s *RequirementStore) LootRequirements(tc shared.TaskContext) []*requirement.LogicalRequirement {
	return copyGroups(s.View(tc).Loot)
}

// ConditionalRequirements returns conditionals whose steps are all items
func (s *RequirementStore) ConditionalRequirements(tc shared.TaskContext) []*requirement.ConditionalRequirement {
	return copyConditionals(s.View(tc).Conditionals)
}

// MixedConditionals returns conditionals with at least one non-item step
func (s *RequirementStore) MixedConditionals(tc shared.TaskContext) []*requirement.ConditionalRequirement {
	return copyConditionals(s.View(tc).MixedConditionals)
}

func copyGroups(in []*requirement.LogicalRequirement) []*requirement.LogicalRequirement {
	out := make([]*requirement.LogicalRequirement, len(in))
	copy(out, in)
	return out
}

func copyConditionals(in []*requirement.ConditionalRequirement) []*requirement.ConditionalRequirement {
	out := make([]*requirement.ConditionalRequirement, len(in))
	copy(out, in)
	return out
}
