package resolution

import (
	"time"

	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// Phase separates the store's own requirements from externally registered ones
type Phase string

const (
	PhaseStandard Phase = "STANDARD"
	PhaseExternal Phase = "EXTERNAL"
)

// Outcome is the result of resolving one unit of the plan
type Outcome struct {
	Key         requirement.Key
	Kind        requirement.Kind
	Group       string
	Phase       Phase
	Priority    shared.Priority
	Description string
	AlreadyMet  bool
	Fulfilled   bool
	Duration    time.Duration
}

// Blocking returns true when the unit failed and was mandatory
func (o Outcome) Blocking() bool {
	return !o.Fulfilled && o.Priority.IsMandatory()
}

// Report summarises one Resolve call
type Report struct {
	TaskContext     shared.TaskContext
	Outcomes        []Outcome
	ExternalSkipped bool
	Duration        time.Duration
}

// Fulfilled counts the units that hold after resolution
func (r *Report) Fulfilled() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Fulfilled {
			n++
		}
	}
	return n
}

// Failed returns the units that could not be satisfied
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Fulfilled {
			out = append(out, o)
		}
	}
	return out
}

// Blocked is true when any mandatory unit failed; the task must not start
func (r *Report) Blocked() bool {
	for _, o := range r.Outcomes {
		if o.Blocking() {
			return true
		}
	}
	return false
}

// Phase returns the outcomes of one phase in resolution order
func (r *Report) Phase(p Phase) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Phase == p {
			out = append(out, o)
		}
	}
	return out
}
