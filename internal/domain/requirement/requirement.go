package requirement

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/ports"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// Kind tags each member of the closed requirement family
type Kind string

const (
	KindItem           Kind = "ITEM"
	KindShop           Kind = "SHOP"
	KindLocation       Kind = "LOCATION"
	KindSpellbook      Kind = "SPELLBOOK"
	KindInventorySetup Kind = "INVENTORY_SETUP"
	KindRunePouch      Kind = "RUNE_POUCH"
	KindLoot           Kind = "LOOT"
	KindConditional    Kind = "CONDITIONAL"
	KindOr             Kind = "OR"
)

// AllKinds lists every kind in display order
var AllKinds = []Kind{
	KindLocation, KindSpellbook, KindInventorySetup, KindRunePouch,
	KindItem, KindShop, KindLoot, KindConditional, KindOr,
}

// IsSingleInstance returns true for kinds of which at most one may be
// active per task context
func (k Kind) IsSingleInstance() bool {
	switch k {
	case KindSpellbook, KindLocation, KindInventorySetup, KindRunePouch:
		return true
	}
	return false
}

// Key is the identity of a requirement. Two requirements with equal keys
// are the same logical requirement.
type Key struct {
	Kind    Kind
	Context shared.TaskContext
	ID      string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.Context, k.ID)
}

// Errors raised while assembling requirements
var (
	ErrInvalidRating     = errors.New("rating must be between 0 and 10")
	ErrEmptyRequirement  = errors.New("requirement has no components")
	ErrInvalidPlacement  = errors.New("invalid item placement")
	ErrDuplicateShopItem = errors.New("item listed twice in shop requirement")
	ErrContextMismatch   = errors.New("child belongs to another task context")
)

// ShopFulfiller drives a shop requirement to completion against the
// markets. Implemented by the fulfillment engine.
type ShopFulfiller interface {
	FulfillShop(ctx context.Context, r *ShopRequirement) bool
}

// Environment is what a requirement may read and act on while checking or
// fulfilling itself
type Environment struct {
	World ports.World
	Shops ShopFulfiller
}

// Requirement is a goal condition that must hold before or after a task.
//
// The family is closed: only the types in this package implement it, and
// callers switch on Kind() when they need variant-specific behaviour.
type Requirement interface {
	Kind() Kind
	Key() Key
	Priority() shared.Priority
	Rating() int
	TaskContext() shared.TaskContext
	Description() string
	ItemIDs() []int

	// IsFulfilled re-evaluates the condition against live state
	IsFulfilled(ctx context.Context, env *Environment) bool

	// Fulfill attempts to make the condition hold and reports success
	Fulfill(ctx context.Context, env *Environment) bool

	sealed()
}

// base holds the attributes shared by every variant
type base struct {
	priority    shared.Priority
	rating      int
	taskContext shared.TaskContext
	description string
}

func newBase(priority shared.Priority, rating int, taskContext shared.TaskContext, description string) (base, error) {
	if _, err := shared.ParsePriority(string(priority)); err != nil {
		return base{}, err
	}
	if rating < 0 || rating > 10 {
		return base{}, fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	if _, err := shared.ParseTaskContext(string(taskContext)); err != nil {
		return base{}, err
	}
	return base{
		priority:    priority,
		rating:      rating,
		taskContext: taskContext,
		description: description,
	}, nil
}

func (b base) Priority() shared.Priority {
	return b.priority
}

func (b base) Rating() int {
	return b.rating
}

func (b base) TaskContext() shared.TaskContext {
	return b.taskContext
}

func (b base) Description() string {
	return b.description
}

// IsMandatory returns true if failing this requirement must block the task
func (b base) IsMandatory() bool {
	return b.priority.IsMandatory()
}

func (base) sealed() {}

// MoreImportant orders requirements for execution: most urgent priority
// first, then higher rating, then key for determinism
func MoreImportant(a, b Requirement) bool {
	if a.Priority() != b.Priority() {
		return a.Priority().MoreUrgentThan(b.Priority())
	}
	if a.Rating() != b.Rating() {
		return a.Rating() > b.Rating()
	}
	return a.Key().String() < b.Key().String()
}
