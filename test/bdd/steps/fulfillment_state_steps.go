package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

type fulfillmentStateContext struct {
	machine       *shop.FulfillmentStateMachine
	clock         *shared.MockClock
	transitionErr error
}

func (fc *fulfillmentStateContext) reset() {
	fc.clock = shared.NewMockClock(time.Time{})
	fc.machine = nil
	fc.transitionErr = nil
}

func (fc *fulfillmentStateContext) aNewFulfillmentStateMachine() error {
	fc.machine = shop.NewFulfillmentStateMachine(fc.clock)
	return nil
}

func (fc *fulfillmentStateContext) theMachineMovesThrough(path string) error {
	for _, s := range strings.Split(path, ",") {
		if err := fc.machine.Transition(shop.FulfillmentState(strings.TrimSpace(s))); err != nil {
			return err
		}
		fc.clock.Advance(time.Second)
	}
	return nil
}

func (fc *fulfillmentStateContext) iMoveTheMachineTo(state string) error {
	fc.transitionErr = fc.machine.Transition(shop.FulfillmentState(state))
	return nil
}

func (fc *fulfillmentStateContext) theFulfillmentStateIs(expected string) error {
	if got := fc.machine.State(); got != shop.FulfillmentState(expected) {
		return fmt.Errorf("expected state %s, got %s", expected, got)
	}
	return nil
}

func (fc *fulfillmentStateContext) theMachineIsFinished() error {
	if !fc.machine.IsFinished() {
		return fmt.Errorf("expected machine to be finished in %s", fc.machine.State())
	}
	return nil
}

func (fc *fulfillmentStateContext) theMachineIsNotFinished() error {
	if fc.machine.IsFinished() {
		return fmt.Errorf("expected machine to be running, got %s", fc.machine.State())
	}
	return nil
}

func (fc *fulfillmentStateContext) theHistoryHasTransitions(expected int) error {
	if got := len(fc.machine.History()); got != expected {
		return fmt.Errorf("expected %d transitions, got %d", expected, got)
	}
	return nil
}

func (fc *fulfillmentStateContext) theTransitionIsRefused() error {
	if fc.transitionErr == nil {
		return fmt.Errorf("expected transition to be refused")
	}
	return nil
}

// InitializeFulfillmentStateScenario registers the state machine steps
func InitializeFulfillmentStateScenario(ctx *godog.ScenarioContext) {
	fc := &fulfillmentStateContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.reset()
		return c, nil
	})

	ctx.Step(`^a new fulfillment state machine$`, fc.aNewFulfillmentStateMachine)
	ctx.Step(`^the machine moves through "([^"]*)"$`, fc.theMachineMovesThrough)
	ctx.Step(`^I move the machine to "([^"]*)"$`, fc.iMoveTheMachineTo)
	ctx.Step(`^the fulfillment state is "([^"]*)"$`, fc.theFulfillmentStateIs)
	ctx.Step(`^the fulfillment machine is finished$`, fc.theMachineIsFinished)
	ctx.Step(`^the fulfillment machine is not finished$`, fc.theMachineIsNotFinished)
	ctx.Step(`^the machine history has (\d+) transitions$`, fc.theHistoryHasTransitions)
	ctx.Step(`^the transition is refused$`, fc.theTransitionIsRefused)
}
