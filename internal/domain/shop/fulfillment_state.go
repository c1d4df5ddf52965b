package shop

import (
	"fmt"
	"time"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// FulfillmentState is a step of one fulfillment call
type FulfillmentState string

const (
	StateIdle        FulfillmentState = "IDLE"
	StateAlreadyDone FulfillmentState = "ALREADY_DONE"

	// Direct-stock shop protocol
	StateWalkToShop FulfillmentState = "WALK_TO_SHOP"
	StateOpenShop   FulfillmentState = "OPEN_SHOP"
	StateTransact   FulfillmentState = "TRANSACT"
	StateWorldHop   FulfillmentState = "WORLD_HOP"
	StateBank       FulfillmentState = "BANK"

	// Order-book exchange protocol
	StateFreeSlots     FulfillmentState = "FREE_SLOTS"
	StatePlaceOffers   FulfillmentState = "PLACE_OFFERS"
	StateAwaitOffers   FulfillmentState = "AWAIT_OFFERS"
	StateSweepOffers   FulfillmentState = "SWEEP_OFFERS"
	StateRestoreOffers FulfillmentState = "RESTORE_OFFERS"

	// Terminal states
	StateAllDone     FulfillmentState = "ALL_DONE"
	StatePartial     FulfillmentState = "PARTIAL"
	StateStop        FulfillmentState = "STOP"
	StateMaxAttempts FulfillmentState = "MAX_ATTEMPTS"
	StateFatal       FulfillmentState = "FATAL"
	StateCancelled   FulfillmentState = "CANCELLED"
)

// every non-terminal state may also fail, stop on cancellation or abort
var escapeStates = []FulfillmentState{StateFatal, StateCancelled}

var allowedTransitions = map[FulfillmentState][]FulfillmentState{
	StateIdle:          {StateAlreadyDone, StateBank, StateWalkToShop, StateFreeSlots},
	StateBank:          {StateWalkToShop, StateFreeSlots, StateStop},
	StateWalkToShop:    {StateOpenShop},
	StateOpenShop:      {StateTransact, StateWalkToShop},
	StateTransact:      {StateWalkToShop, StateWorldHop, StateBank, StateStop, StateAllDone, StateMaxAttempts},
	StateWorldHop:      {StateWalkToShop, StateMaxAttempts, StateStop},
	StateFreeSlots:     {StatePlaceOffers, StateSweepOffers},
	StatePlaceOffers:   {StateAwaitOffers, StateSweepOffers},
	StateAwaitOffers:   {StateSweepOffers},
	StateSweepOffers:   {StateRestoreOffers},
	StateRestoreOffers: {StateAllDone, StatePartial, StateStop},
}

// IsTerminal returns true if no further transition is possible
func (s FulfillmentState) IsTerminal() bool {
	_, ok := allowedTransitions[s]
	return !ok
}

// StateTransition records one step of the machine
type StateTransition struct {
	From FulfillmentState
	To   FulfillmentState
	At   time.Time
}

// FulfillmentStateMachine enforces the legal step order of one
// fulfillment call and keeps its history for logging and tests.
//
// Invariants:
//   - starts in IDLE
//   - terminal states accept no transition
//   - FATAL and CANCELLED are reachable from every non-terminal state
type FulfillmentStateMachine struct {
	state     FulfillmentState
	startedAt time.Time
	history   []StateTransition
	clock     shared.Clock
}

// NewFulfillmentStateMachine creates a machine in IDLE state
func NewFulfillmentStateMachine(clock shared.Clock) *FulfillmentStateMachine {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &FulfillmentStateMachine{
		state:     StateIdle,
		startedAt: clock.Now(),
		clock:     clock,
	}
}

// State returns the current state
func (sm *FulfillmentStateMachine) State() FulfillmentState {
	return sm.state
}

// History returns a copy of the transitions taken so far
func (sm *FulfillmentStateMachine) History() []StateTransition {
	out := make([]StateTransition, len(sm.history))
	copy(out, sm.history)
	return out
}

// Elapsed returns the time since the machine was created
func (sm *FulfillmentStateMachine) Elapsed() time.Duration {
	return sm.clock.Now().Sub(sm.startedAt)
}

// CanTransition reports whether to is reachable from the current state
func (sm *FulfillmentStateMachine) CanTransition(to FulfillmentState) bool {
	allowed, ok := allowedTransitions[sm.state]
	if !ok {
		return false
	}
	for _, s := range escapeStates {
		if s == to {
			return true
		}
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the machine to the given state
func (sm *FulfillmentStateMachine) Transition(to FulfillmentState) error {
	if !sm.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sm.state, to)
	}
	sm.history = append(sm.history, StateTransition{From: sm.state, To: to, At: sm.clock.Now()})
	sm.state = to
	return nil
}

// IsFinished returns true once a terminal state has been reached
func (sm *FulfillmentStateMachine) IsFinished() bool {
	return sm.state.IsTerminal()
}
