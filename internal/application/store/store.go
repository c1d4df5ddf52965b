package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/andrescamacho/requisition-go/internal/application/logging"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// slotKey addresses a single-instance slot
type slotKey struct {
	kind    requirement.Kind
	context shared.TaskContext
}

// RequirementStore owns every registered requirement and serves grouped
// views of them.
//
// Writers mutate the maps under mu and bump version. Readers compare the
// cached snapshot's version with the current one and rebuild under
// rebuildMu when they differ, re-checking after the lock is acquired so
// only one goroutine rebuilds per version.
type RequirementStore struct {
	mu       sync.RWMutex
	standard map[requirement.Key]requirement.Requirement
	external map[requirement.Key]requirement.Requirement
	slots    map[slotKey]requirement.Key

	version   atomic.Uint64
	snapshot  atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
	rebuilds  atomic.Uint64
}

// NewRequirementStore creates an empty store
func NewRequirementStore() *RequirementStore {
	return &RequirementStore{
		standard: make(map[requirement.Key]requirement.Requirement),
		external: make(map[requirement.Key]requirement.Requirement),
		slots:    make(map[slotKey]requirement.Key),
	}
}

// Register adds or replaces a standard requirement and reports whether its
// key was new. Single-instance kinds evict whatever held the slot for the
// same task context.
func (s *RequirementStore) Register(ctx context.Context, req requirement.Requirement) bool {
	return s.register(ctx, req, false)
}

// RegisterExternal adds a requirement that is only attempted after every
// standard requirement holds
func (s *RequirementStore) RegisterExternal(ctx context.Context, req requirement.Requirement) bool {
	return s.register(ctx, req, true)
}

func (s *RequirementStore) register(ctx context.Context, req requirement.Requirement, external bool) bool {
	if req == nil {
		return false
	}
	logger := logging.LoggerFromContext(ctx)
	key := req.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.standard
	if external {
		target = s.external
	}

	if req.Kind().IsSingleInstance() && !external {
		sk := slotKey{kind: req.Kind(), context: req.TaskContext()}
		if prev, ok := s.slots[sk]; ok && prev != key {
			if old, exists := s.standard[prev]; exists {
				logger.Log("WARNING", "Replacing single-instance requirement", map[string]interface{}{
					"kind":     string(req.Kind()),
					"context":  string(req.TaskContext()),
					"previous": old.Description(),
					"current":  req.Description(),
				})
				delete(s.standard, prev)
			}
		}
		s.slots[sk] = key
	}

	_, existed := target[key]
	target[key] = req
	s.version.Add(1)

	logger.Log("DEBUG", "Requirement registered", map[string]interface{}{
		"key":      key.String(),
		"external": external,
		"new":      !existed,
	})
	return !existed
}

// Unregister removes a requirement by key from either set and clears any
// single-instance slot it held. Returns true if something was removed.
func (s *RequirementStore) Unregister(ctx context.Context, req requirement.Requirement) bool {
	if req == nil {
		return false
	}
	key := req.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	if _, ok := s.standard[key]; ok {
		delete(s.standard, key)
		removed = true
	}
	if _, ok := s.external[key]; ok {
		delete(s.external, key)
		removed = true
	}
	sk := slotKey{kind: req.Kind(), context: req.TaskContext()}
	if held, ok := s.slots[sk]; ok && held == key {
		delete(s.slots, sk)
	}
	if removed {
		s.version.Add(1)
		logging.LoggerFromContext(ctx).Log("DEBUG", "Requirement unregistered", map[string]interface{}{
			"key": key.String(),
		})
	}
	return removed
}

// Clear drops every requirement
func (s *RequirementStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standard = make(map[requirement.Key]requirement.Requirement)
	s.external = make(map[requirement.Key]requirement.Requirement)
	s.slots = make(map[slotKey]requirement.Key)
	s.version.Add(1)
}

// Size returns the number of standard requirements
func (s *RequirementStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.standard)
}

// ExternalSize returns the number of external requirements
func (s *RequirementStore) ExternalSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.external)
}

// Version returns the mutation counter
func (s *RequirementStore) Version() uint64 {
	return s.version.Load()
}

// Rebuilds returns how many times the grouped views were rebuilt
func (s *RequirementStore) Rebuilds() uint64 {
	return s.rebuilds.Load()
}

// Get returns the standard requirement registered under key
func (s *RequirementStore) Get(key requirement.Key) (requirement.Requirement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.standard[key]
	return r, ok
}

// All returns every standard requirement ordered by importance
func (s *RequirementStore) All() []requirement.Requirement {
	s.mu.RLock()
	out := make([]requirement.Requirement, 0, len(s.standard))
	for _, r := range s.standard {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sortByImportance(out)
	return out
}

// External returns every external requirement ordered by importance
func (s *RequirementStore) External() []requirement.Requirement {
	s.mu.RLock()
	out := make([]requirement.Requirement, 0, len(s.external))
	for _, r := range s.external {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sortByImportance(out)
	return out
}

// ByContext returns the standard requirements registered under exactly tc
func (s *RequirementStore) ByContext(tc shared.TaskContext) []requirement.Requirement {
	return s.filter(func(r requirement.Requirement) bool { return r.TaskContext() == tc })
}

// ByKind returns the standard requirements of one kind
func (s *RequirementStore) ByKind(kind requirement.Kind) []requirement.Requirement {
	return s.filter(func(r requirement.Requirement) bool { return r.Kind() == kind })
}

func (s *RequirementStore) filter(keep func(requirement.Requirement) bool) []requirement.Requirement {
	var out []requirement.Requirement
	for _, r := range s.All() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *RequirementStore) active(kind requirement.Kind, tc shared.TaskContext) requirement.Requirement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.slots[slotKey{kind: kind, context: tc}]
	if !ok {
		return nil
	}
	return s.standard[key]
}

// ActiveSpellbook returns the spellbook requirement held for tc, if any
func (s *RequirementStore) ActiveSpellbook(tc shared.TaskContext) *requirement.SpellbookRequirement {
	r, _ := s.active(requirement.KindSpellbook, tc).(*requirement.SpellbookRequirement)
	return r
}

// ActiveLocation returns the location requirement held for tc, if any
func (s *RequirementStore) ActiveLocation(tc shared.TaskContext) *requirement.LocationRequirement {
	r, _ := s.active(requirement.KindLocation, tc).(*requirement.LocationRequirement)
	return r
}

// ActiveInventorySetup returns the inventory setup held for tc, if any
func (s *RequirementStore) ActiveInventorySetup(tc shared.TaskContext) *requirement.InventorySetupRequirement {
	r, _ := s.active(requirement.KindInventorySetup, tc).(*requirement.InventorySetupRequirement)
	return r
}

// ActiveRunePouch returns the rune pouch requirement held for tc, if any
func (s *RequirementStore) ActiveRunePouch(tc shared.TaskContext) *requirement.RunePouchRequirement {
	r, _ := s.active(requirement.KindRunePouch, tc).(*requirement.RunePouchRequirement)
	return r
}

func sortByImportance(reqs []requirement.Requirement) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return requirement.MoreImportant(reqs[i], reqs[j])
	})
}
