package shared

import (
	"context"
	"sync/atomic"

	"github.com/andrescamacho/requisition-go/pkg/utils"
)

// SessionContext carries per-session state that several subsystems share.
//
// It replaces process-wide flags: every collaborator that needs to know
// whether loot was picked up this cycle reads it from the session passed
// down through context.Context.
//
// Example usage:
//
//	session := NewSessionContext("pre-task-setup")
//	ctx = WithSessionContext(ctx, session)
//	...
//	if SessionFromContext(ctx).LootedThisCycle() { ... }
type SessionContext struct {
	// ID is a unique identifier for the session, used to tag trade records
	// and ledger snapshots
	ID string

	// Operation names what the session is doing (e.g. "pre-task-setup")
	Operation string

	lootedThisCycle atomic.Bool
}

// NewSessionContext creates a new session with a generated ID
func NewSessionContext(operation string) *SessionContext {
	if operation == "" {
		operation = "manual"
	}
	return &SessionContext{
		ID:        utils.GenerateSessionID(operation),
		Operation: operation,
	}
}

// IsValid returns true if the session has required fields
func (s *SessionContext) IsValid() bool {
	return s != nil && s.ID != "" && s.Operation != ""
}

// MarkLooted records that loot was collected during the current cycle
func (s *SessionContext) MarkLooted() {
	if s != nil {
		s.lootedThisCycle.Store(true)
	}
}

// LootedThisCycle reports whether loot was collected during the current cycle
func (s *SessionContext) LootedThisCycle() bool {
	return s != nil && s.lootedThisCycle.Load()
}

// StartCycle clears per-cycle flags
func (s *SessionContext) StartCycle() {
	if s != nil {
		s.lootedThisCycle.Store(false)
	}
}

// String returns a human-readable representation of the session
func (s *SessionContext) String() string {
	if s == nil {
		return "<no session>"
	}
	return s.Operation + ":" + s.ID
}

type sessionContextKey int

const (
	sessionKey sessionContextKey = iota
	actuationThreadKey
)

// WithSessionContext attaches a session to ctx
func WithSessionContext(ctx context.Context, session *SessionContext) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext extracts the session from ctx, or nil if none is attached
func SessionFromContext(ctx context.Context) *SessionContext {
	if s, ok := ctx.Value(sessionKey).(*SessionContext); ok {
		return s
	}
	return nil
}

// WithActuationThread marks ctx as belonging to the perception/actuation
// loop. Blocking engine calls refuse to run under such a context.
func WithActuationThread(ctx context.Context) context.Context {
	return context.WithValue(ctx, actuationThreadKey, true)
}

// IsActuationThread reports whether ctx was marked with WithActuationThread
func IsActuationThread(ctx context.Context) bool {
	v, _ := ctx.Value(actuationThreadKey).(bool)
	return v
}
