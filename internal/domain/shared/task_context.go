package shared

import "fmt"

// TaskContext identifies the phase of a task a requirement applies to
type TaskContext string

const (
	TaskContextPreTask  TaskContext = "PRE_TASK"
	TaskContextPostTask TaskContext = "POST_TASK"
	TaskContextBoth     TaskContext = "BOTH"
)

// AllTaskContexts lists every context in a stable order
var AllTaskContexts = []TaskContext{TaskContextPreTask, TaskContextPostTask, TaskContextBoth}

// ParseTaskContext converts a string into a TaskContext
func ParseTaskContext(s string) (TaskContext, error) {
	switch TaskContext(s) {
	case TaskContextPreTask, TaskContextPostTask, TaskContextBoth:
		return TaskContext(s), nil
	}
	return "", NewValidationError("task_context", fmt.Sprintf("unknown value %q", s))
}

// AppliesTo reports whether a requirement registered under c is relevant
// while executing phase. BOTH applies to every phase.
func (c TaskContext) AppliesTo(phase TaskContext) bool {
	return c == phase || c == TaskContextBoth || phase == TaskContextBoth
}

func (c TaskContext) String() string {
	return string(c)
}
