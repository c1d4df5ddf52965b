package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrescamacho/requisition-go/internal/application/logging"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// ValidateConsistency checks the single-instance rules against the raw
// requirement set and soft-checks the cached views against it.
//
// Violations of the single-instance rules are returned as an error. Cache
// totals that do not line up are only logged, since decomposed OR-groups
// and EITHER items make the totals legitimately differ.
func (s *RequirementStore) ValidateConsistency(ctx context.Context) error {
	logger := logging.LoggerFromContext(ctx)

	counts := make(map[slotKey]int)
	s.mu.RLock()
	raw := len(s.standard)
	for _, r := range s.standard {
		if r.Kind().IsSingleInstance() {
			counts[slotKey{kind: r.Kind(), context: r.TaskContext()}]++
		}
	}
	danglingSlots := 0
	for sk, key := range s.slots {
		if _, ok := s.standard[key]; !ok {
			danglingSlots++
			logger.Log("WARNING", "Single-instance slot points at a missing requirement", map[string]interface{}{
				"kind":    string(sk.kind),
				"context": string(sk.context),
				"key":     key.String(),
			})
		}
	}
	s.mu.RUnlock()

	var problems []string
	for sk, n := range counts {
		if n > 1 {
			problems = append(problems, fmt.Sprintf("%d %s requirements for %s", n, sk.kind, sk.context))
		}
	}
	if danglingSlots > 0 {
		problems = append(problems, fmt.Sprintf("%d dangling single-instance slots", danglingSlots))
	}

	cached := 0
	for _, tc := range shared.AllTaskContexts {
		cached += s.View(tc).LeafCount()
	}
	if cached < raw {
		logger.Log("WARNING", "Cached views hold fewer requirements than the store", map[string]interface{}{
			"cached": cached,
			"stored": raw,
		})
	}

	if len(problems) > 0 {
		return fmt.Errorf("requirement store inconsistent: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Summary returns a count of standard requirements per kind
func (s *RequirementStore) Summary() map[requirement.Kind]int {
	out := make(map[requirement.Kind]int)
	for _, r := range s.All() {
		out[r.Kind()]++
	}
	return out
}
