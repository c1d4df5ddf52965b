package requirement

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// LogicalRequirement is satisfied when any one of its children is.
//
// Priority is the most urgent among the children and rating is the sum of
// theirs, so an OR-group ranks like its strongest alternative.
type LogicalRequirement struct {
	base
	children []Requirement
}

// NewLogicalRequirement creates an OR over children. Children from a
// different task context are rejected.
func NewLogicalRequirement(taskContext shared.TaskContext, description string, children ...Requirement) (*LogicalRequirement, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("or-group: %w", ErrEmptyRequirement)
	}
	priorities := make([]shared.Priority, 0, len(children))
	rating := 0
	for _, c := range children {
		if c == nil {
			return nil, fmt.Errorf("or-group: nil child: %w", ErrEmptyRequirement)
		}
		if c.TaskContext() != taskContext {
			return nil, fmt.Errorf("or-group %s: %q is %s: %w", taskContext, c.Description(), c.TaskContext(), ErrContextMismatch)
		}
		priorities = append(priorities, c.Priority())
		rating += c.Rating()
	}
	if description == "" {
		descs := make([]string, len(children))
		for i, c := range children {
			descs[i] = c.Description()
		}
		description = "any of: " + strings.Join(descs, " | ")
	}
	b, err := newBase(shared.MostUrgent(priorities...), 0, taskContext, description)
	if err != nil {
		return nil, err
	}
	// summed ratings may exceed the 0-10 range of a single requirement
	b.rating = rating
	cp := make([]Requirement, len(children))
	copy(cp, children)
	return &LogicalRequirement{base: b, children: cp}, nil
}

func (r *LogicalRequirement) Kind() Kind {
	return KindOr
}

func (r *LogicalRequirement) Key() Key {
	keys := make([]string, len(r.children))
	for i, c := range r.children {
		keys[i] = c.Key().String()
	}
	sort.Strings(keys)
	return Key{Kind: KindOr, Context: r.taskContext, ID: "OR(" + strings.Join(keys, ";") + ")"}
}

// Children returns the alternatives in registration order
func (r *LogicalRequirement) Children() []Requirement {
	out := make([]Requirement, len(r.children))
	copy(out, r.children)
	return out
}

func (r *LogicalRequirement) Len() int {
	return len(r.children)
}

// ChildKind returns the kind shared by every child, or KindOr when mixed
func (r *LogicalRequirement) ChildKind() Kind {
	k := r.children[0].Kind()
	for _, c := range r.children[1:] {
		if c.Kind() != k {
			return KindOr
		}
	}
	return k
}

// IsPure reports whether the group can be cached as one unit: all children
// share one kind and context, and item children are all flexible
func (r *LogicalRequirement) IsPure() bool {
	k := r.ChildKind()
	if k == KindOr {
		return false
	}
	for _, c := range r.children {
		if c.TaskContext() != r.taskContext {
			return false
		}
		if item, ok := c.(*ItemRequirement); ok && !item.IsFlexible() {
			return false
		}
	}
	return true
}

func (r *LogicalRequirement) ItemIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, c := range r.children {
		for _, id := range c.ItemIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func (r *LogicalRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	for _, c := range r.children {
		if c.IsFulfilled(ctx, env) {
			return true
		}
	}
	return false
}

// Fulfill tries alternatives from most to least important and stops at the
// first that succeeds
func (r *LogicalRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsFulfilled(ctx, env) {
		return true
	}
	ordered := r.Children()
	sort.SliceStable(ordered, func(i, j int) bool {
		return MoreImportant(ordered[i], ordered[j])
	})
	for _, c := range ordered {
		if ctx.Err() != nil {
			return false
		}
		if c.Fulfill(ctx, env) {
			return true
		}
	}
	return false
}
