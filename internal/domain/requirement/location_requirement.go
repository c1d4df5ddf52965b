package requirement

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// LocationRequirement asks for the player to stand within tolerance of a point
type LocationRequirement struct {
	base
	name      string
	target    shared.WorldPoint
	tolerance int
}

// NewLocationRequirement creates a location requirement
func NewLocationRequirement(
	name string,
	target shared.WorldPoint,
	tolerance int,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
) (*LocationRequirement, error) {
	if tolerance < 0 {
		return nil, shared.NewValidationError("tolerance", "cannot be negative")
	}
	b, err := newBase(priority, rating, taskContext, fmt.Sprintf("be at %s %s", name, target))
	if err != nil {
		return nil, err
	}
	return &LocationRequirement{base: b, name: name, target: target, tolerance: tolerance}, nil
}

func (r *LocationRequirement) Kind() Kind {
	return KindLocation
}

func (r *LocationRequirement) Key() Key {
	return Key{Kind: KindLocation, Context: r.taskContext, ID: fmt.Sprintf("%s@%s", r.name, r.target)}
}

func (r *LocationRequirement) ItemIDs() []int {
	return nil
}

func (r *LocationRequirement) Target() shared.WorldPoint {
	return r.target
}

func (r *LocationRequirement) Tolerance() int {
	return r.tolerance
}

func (r *LocationRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	if env == nil || env.World == nil {
		return false
	}
	return env.World.Movement().IsInArea(ctx, r.target, r.tolerance)
}

func (r *LocationRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsFulfilled(ctx, env) {
		return true
	}
	if env == nil || env.World == nil {
		return false
	}
	reached, err := env.World.Movement().WalkTo(ctx, r.target, r.tolerance)
	return err == nil && reached
}

// SpellbookRequirement asks for a specific spellbook to be active
type SpellbookRequirement struct {
	base
	book string
}

// NewSpellbookRequirement creates a spellbook requirement
func NewSpellbookRequirement(
	book string,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
) (*SpellbookRequirement, error) {
	if book == "" {
		return nil, shared.NewValidationError("spellbook", "cannot be empty")
	}
	b, err := newBase(priority, rating, taskContext, "use "+book+" spellbook")
	if err != nil {
		return nil, err
	}
	return &SpellbookRequirement{base: b, book: book}, nil
}

func (r *SpellbookRequirement) Kind() Kind {
	return KindSpellbook
}

func (r *SpellbookRequirement) Key() Key {
	return Key{Kind: KindSpellbook, Context: r.taskContext, ID: r.book}
}

func (r *SpellbookRequirement) ItemIDs() []int {
	return nil
}

func (r *SpellbookRequirement) Book() string {
	return r.book
}

func (r *SpellbookRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	if env == nil || env.World == nil {
		return false
	}
	return env.World.Spellbook().Active(ctx) == r.book
}

func (r *SpellbookRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsFulfilled(ctx, env) {
		return true
	}
	if env == nil || env.World == nil {
		return false
	}
	if err := env.World.Spellbook().Switch(ctx, r.book); err != nil {
		return false
	}
	return r.IsFulfilled(ctx, env)
}
