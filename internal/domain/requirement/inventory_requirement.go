package requirement

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// InventorySetupRequirement asks for a named loadout: a fixed list of items
// worn or carried together
type InventorySetupRequirement struct {
	base
	name  string
	items []*ItemRequirement
}

// NewInventorySetupRequirement creates an inventory setup requirement
func NewInventorySetupRequirement(
	name string,
	items []*ItemRequirement,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
) (*InventorySetupRequirement, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("inventory setup %q: %w", name, ErrEmptyRequirement)
	}
	b, err := newBase(priority, rating, taskContext, "inventory setup "+name)
	if err != nil {
		return nil, err
	}
	cp := make([]*ItemRequirement, len(items))
	copy(cp, items)
	return &InventorySetupRequirement{base: b, name: name, items: cp}, nil
}

func (r *InventorySetupRequirement) Kind() Kind {
	return KindInventorySetup
}

func (r *InventorySetupRequirement) Key() Key {
	return Key{Kind: KindInventorySetup, Context: r.taskContext, ID: r.name}
}

func (r *InventorySetupRequirement) Name() string {
	return r.name
}

func (r *InventorySetupRequirement) Items() []*ItemRequirement {
	out := make([]*ItemRequirement, len(r.items))
	copy(out, r.items)
	return out
}

func (r *InventorySetupRequirement) ItemIDs() []int {
	ids := make([]int, 0, len(r.items))
	for _, it := range r.items {
		ids = append(ids, it.ItemID())
	}
	sort.Ints(ids)
	return ids
}

func (r *InventorySetupRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	for _, it := range r.items {
		if !it.IsFulfilled(ctx, env) {
			return false
		}
	}
	return true
}

func (r *InventorySetupRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	ok := true
	for _, it := range r.items {
		if !it.Fulfill(ctx, env) {
			ok = false
		}
	}
	return ok
}

// RunePouchRequirement asks for the rune pouch to hold given amounts
type RunePouchRequirement struct {
	base
	runes map[int]int
}

// NewRunePouchRequirement creates a rune pouch requirement from rune id -> amount
func NewRunePouchRequirement(
	runes map[int]int,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
) (*RunePouchRequirement, error) {
	if len(runes) == 0 {
		return nil, fmt.Errorf("rune pouch: %w", ErrEmptyRequirement)
	}
	cp := make(map[int]int, len(runes))
	for id, amount := range runes {
		if id <= 0 || amount <= 0 {
			return nil, shared.NewValidationError("runes", fmt.Sprintf("invalid entry %d=%d", id, amount))
		}
		cp[id] = amount
	}
	b, err := newBase(priority, rating, taskContext, fmt.Sprintf("rune pouch with %d rune types", len(cp)))
	if err != nil {
		return nil, err
	}
	return &RunePouchRequirement{base: b, runes: cp}, nil
}

func (r *RunePouchRequirement) Kind() Kind {
	return KindRunePouch
}

func (r *RunePouchRequirement) Key() Key {
	ids := r.ItemIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d=%d", id, r.runes[id])
	}
	return Key{Kind: KindRunePouch, Context: r.taskContext, ID: strings.Join(parts, ",")}
}

func (r *RunePouchRequirement) ItemIDs() []int {
	ids := make([]int, 0, len(r.runes))
	for id := range r.runes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Runes returns a copy of the rune id -> amount map
func (r *RunePouchRequirement) Runes() map[int]int {
	out := make(map[int]int, len(r.runes))
	for id, amount := range r.runes {
		out[id] = amount
	}
	return out
}

func (r *RunePouchRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	if env == nil || env.World == nil {
		return false
	}
	pouch := env.World.RunePouch()
	for id, amount := range r.runes {
		if pouch.Count(ctx, id) < amount {
			return false
		}
	}
	return true
}

func (r *RunePouchRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsFulfilled(ctx, env) {
		return true
	}
	if env == nil || env.World == nil {
		return false
	}
	pouch := env.World.RunePouch()
	for _, id := range r.ItemIDs() {
		missing := r.runes[id] - pouch.Count(ctx, id)
		if missing <= 0 {
			continue
		}
		if err := pouch.Fill(ctx, id, missing); err != nil {
			return false
		}
	}
	return r.IsFulfilled(ctx, env)
}
