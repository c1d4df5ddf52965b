package requirement

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// Condition is evaluated against live state to select a conditional step
type Condition func(ctx context.Context, env *Environment) bool

// Always is a condition that holds unconditionally
func Always(context.Context, *Environment) bool {
	return true
}

// Step pairs a condition with the requirement to satisfy while it holds
type Step struct {
	Name string
	When Condition
	Then Requirement
}

// ConditionalRequirement holds ordered steps. The active step is the first
// whose condition holds; only that step's requirement is checked or fulfilled.
type ConditionalRequirement struct {
	base
	name  string
	steps []Step
}

// NewConditionalRequirement creates a conditional requirement
func NewConditionalRequirement(
	name string,
	steps []Step,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
) (*ConditionalRequirement, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("conditional %q: %w", name, ErrEmptyRequirement)
	}
	cp := make([]Step, len(steps))
	for i, s := range steps {
		if s.Then == nil {
			return nil, shared.NewValidationError("steps", fmt.Sprintf("step %d has no requirement", i))
		}
		if s.When == nil {
			s.When = Always
		}
		cp[i] = s
	}
	b, err := newBase(priority, rating, taskContext, "conditional "+name)
	if err != nil {
		return nil, err
	}
	return &ConditionalRequirement{base: b, name: name, steps: cp}, nil
}

func (r *ConditionalRequirement) Kind() Kind {
	return KindConditional
}

func (r *ConditionalRequirement) Key() Key {
	return Key{Kind: KindConditional, Context: r.taskContext, ID: r.name}
}

func (r *ConditionalRequirement) Name() string {
	return r.name
}

// Steps returns the steps in evaluation order
func (r *ConditionalRequirement) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

func (r *ConditionalRequirement) ItemIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, s := range r.steps {
		for _, id := range s.Then.ItemIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// IsPureItem returns true when every step resolves to a plain item
// requirement or an OR of plain item requirements
func (r *ConditionalRequirement) IsPureItem() bool {
	for _, s := range r.steps {
		switch t := s.Then.(type) {
		case *ItemRequirement:
		case *LogicalRequirement:
			if !t.IsPure() || t.ChildKind() != KindItem {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ActiveStep returns the first step whose condition currently holds
func (r *ConditionalRequirement) ActiveStep(ctx context.Context, env *Environment) (Step, bool) {
	for _, s := range r.steps {
		if s.When(ctx, env) {
			return s, true
		}
	}
	return Step{}, false
}

// IsFulfilled is true when no step is active or the active step holds
func (r *ConditionalRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	s, ok := r.ActiveStep(ctx, env)
	if !ok {
		return true
	}
	return s.Then.IsFulfilled(ctx, env)
}

func (r *ConditionalRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	s, ok := r.ActiveStep(ctx, env)
	if !ok {
		return true
	}
	return s.Then.Fulfill(ctx, env)
}

func (r *ConditionalRequirement) String() string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name
	}
	return fmt.Sprintf("%s[%s]", r.name, strings.Join(names, " -> "))
}
