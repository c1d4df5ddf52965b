package requirement

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// LootRequirement asks for ground items to be picked up within a radius
type LootRequirement struct {
	base
	itemIDs []int
	amount  int
	radius  int
}

// NewLootRequirement creates a loot requirement for any of itemIDs
func NewLootRequirement(
	itemIDs []int,
	amount int,
	radius int,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
) (*LootRequirement, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("loot: %w", ErrEmptyRequirement)
	}
	if amount <= 0 {
		amount = 1
	}
	if radius < 0 {
		return nil, shared.NewValidationError("radius", "cannot be negative")
	}
	ids := make([]int, len(itemIDs))
	copy(ids, itemIDs)
	sort.Ints(ids)
	b, err := newBase(priority, rating, taskContext, fmt.Sprintf("loot %d of %v within %d", amount, ids, radius))
	if err != nil {
		return nil, err
	}
	return &LootRequirement{base: b, itemIDs: ids, amount: amount, radius: radius}, nil
}

func (r *LootRequirement) Kind() Kind {
	return KindLoot
}

func (r *LootRequirement) Key() Key {
	parts := make([]string, len(r.itemIDs))
	for i, id := range r.itemIDs {
		parts[i] = strconv.Itoa(id)
	}
	return Key{Kind: KindLoot, Context: r.taskContext, ID: strings.Join(parts, ",")}
}

func (r *LootRequirement) ItemIDs() []int {
	out := make([]int, len(r.itemIDs))
	copy(out, r.itemIDs)
	return out
}

func (r *LootRequirement) Amount() int {
	return r.amount
}

func (r *LootRequirement) Radius() int {
	return r.radius
}

func (r *LootRequirement) carried(ctx context.Context, env *Environment) int {
	wanted := make(map[int]bool, len(r.itemIDs))
	for _, id := range r.itemIDs {
		wanted[id] = true
	}
	return env.World.Inventory().CountMatching(ctx, func(id int, _ string) bool {
		return wanted[id]
	})
}

func (r *LootRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	if env == nil || env.World == nil {
		return false
	}
	return r.carried(ctx, env) >= r.amount
}

// Fulfill picks up matching ground items and flags the session when
// anything was taken
func (r *LootRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsFulfilled(ctx, env) {
		return true
	}
	if env == nil || env.World == nil {
		return false
	}
	taken, err := env.World.Looter().Loot(ctx, r.itemIDs, r.radius)
	if err != nil {
		return false
	}
	if taken > 0 {
		shared.SessionFromContext(ctx).MarkLooted()
	}
	return r.IsFulfilled(ctx, env)
}
