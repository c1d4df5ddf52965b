package shared

import "fmt"

// Priority expresses how urgent a requirement is.
//
// Ordering is defined by Rank, never by declaration order: a lower rank is
// more urgent. Every merge path (OR-groups, resolver ordering) goes through
// MoreUrgentThan so the ordering is applied uniformly.
type Priority string

const (
	PriorityMandatory   Priority = "MANDATORY"
	PriorityRecommended Priority = "RECOMMENDED"
	PriorityOptional    Priority = "OPTIONAL"
)

var priorityRanks = map[Priority]int{
	PriorityMandatory:   0,
	PriorityRecommended: 1,
	PriorityOptional:    2,
}

// ParsePriority converts a string into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if _, ok := priorityRanks[p]; !ok {
		return "", NewValidationError("priority", fmt.Sprintf("unknown value %q", s))
	}
	return p, nil
}

// Rank returns the total-order rank; 0 is the most urgent.
// Unknown priorities sort after every known one.
func (p Priority) Rank() int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return len(priorityRanks)
}

// MoreUrgentThan returns true if p must be handled before other
func (p Priority) MoreUrgentThan(other Priority) bool {
	return p.Rank() < other.Rank()
}

// IsMandatory returns true for the MANDATORY priority
func (p Priority) IsMandatory() bool {
	return p == PriorityMandatory
}

// MostUrgent returns the most urgent priority among ps.
// An empty list yields OPTIONAL.
func MostUrgent(ps ...Priority) Priority {
	best := PriorityOptional
	for _, p := range ps {
		if p.MoreUrgentThan(best) {
			best = p
		}
	}
	return best
}

func (p Priority) String() string {
	return string(p)
}
