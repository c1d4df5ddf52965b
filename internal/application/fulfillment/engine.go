package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/requisition-go/internal/application/logging"
	"github.com/andrescamacho/requisition-go/internal/domain/ports"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// Result describes the outcome of one fulfillment call
type Result struct {
	Success      bool
	State        shop.FulfillmentState
	OffersPlaced int
	Transacted   int
	Hops         int
	Reason       string
	Duration     time.Duration
}

// Engine drives shop requirements to completion against the two market
// protocols. It is safe for concurrent use; each call keeps its own state
// and each requirement keeps its own ledger and excluded worlds.
type Engine struct {
	world   ports.World
	config  Config
	clock   shared.Clock
	limiter *rate.Limiter
	ledgers LedgerRepository
	trades  TradeRecorder
	metrics MetricsRecorder

	// depths counts unfilled offers per requirement item, driving adaptive
	// market-depth pricing across calls
	depthMu sync.Mutex
	depths  map[string]int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used for waits and timestamps
func WithClock(clock shared.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLedgerRepository persists offer ledgers after each change
func WithLedgerRepository(repo LedgerRepository) Option {
	return func(e *Engine) { e.ledgers = repo }
}

// WithTradeRecorder records every transacted batch
func WithTradeRecorder(recorder TradeRecorder) Option {
	return func(e *Engine) { e.trades = recorder }
}

// WithMetrics reports measurements to recorder
func WithMetrics(recorder MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = recorder }
}

// NewEngine creates an engine acting on world
func NewEngine(world ports.World, config Config, opts ...Option) *Engine {
	e := &Engine{
		world:   world,
		config:  config,
		clock:   shared.NewRealClock(),
		metrics: noOpMetrics{},
		depths:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}

	limit := rate.Inf
	if config.ActionsPerSecond > 0 {
		limit = rate.Limit(config.ActionsPerSecond)
	}
	burst := config.ActionBurst
	if burst < 1 {
		burst = 1
	}
	e.limiter = rate.NewLimiter(limit, burst)
	return e
}

// FulfillShop implements requirement.ShopFulfiller
func (e *Engine) FulfillShop(ctx context.Context, req *requirement.ShopRequirement) bool {
	result, err := e.Fulfill(ctx, req)
	if err != nil {
		logging.LoggerFromContext(ctx).Log("ERROR", "Shop fulfillment refused", map[string]interface{}{
			"requirement": req.Key().String(),
			"error":       err.Error(),
		})
		return false
	}
	return result.Success
}

// run holds the state of one Fulfill call
type run struct {
	req    *requirement.ShopRequirement
	sm     *shop.FulfillmentStateMachine
	result *Result
	logger logging.ContainerLogger
}

func (r *run) to(state shop.FulfillmentState) {
	from := r.sm.State()
	if err := r.sm.Transition(state); err != nil {
		// an illegal step is a programming error; record it and fail
		r.logger.Log("ERROR", "Illegal fulfillment transition", map[string]interface{}{
			"from":  string(from),
			"to":    string(state),
			"error": err.Error(),
		})
		_ = r.sm.Transition(shop.StateFatal)
		return
	}
	r.logger.Log("DEBUG", "Fulfillment state changed", map[string]interface{}{
		"requirement": r.req.Key().String(),
		"from":        string(from),
		"to":          string(state),
	})
}

// finish moves to a terminal state and sets the outcome
func (r *run) finish(state shop.FulfillmentState, success bool, reason string) {
	if !r.sm.IsFinished() {
		r.to(state)
	}
	r.result.State = r.sm.State()
	r.result.Success = success
	r.result.Reason = reason
}

// fail finishes in FATAL, resolving to success for optional requirements
func (r *run) fail(reason string) {
	r.finish(shop.StateFatal, !r.req.IsMandatory(), reason)
}

// Fulfill drives req to completion.
//
// Workflow:
//  1. Refuse to run on the actuation thread
//  2. Return immediately when every demand is already complete
//  3. For SELL, check every pending item is tradeable and held somewhere
//  4. Bank first when the protocol needs coins or sell stock
//  5. Run the exchange or shop protocol depending on the market kind
//  6. Deposit proceeds when configured
//
// Progress recorded on the demands and in the offer ledger is kept when the
// call fails, so a later call resumes rather than restarts. A cancelled
// context ends in CANCELLED and reports failure whatever the priority. Unexpected
// panics are logged and resolved as failure for mandatory requirements.
//
// Returns:
//   - Result with the terminal state and counters
//   - ErrBlockingOnActuationThread when called from the actuation thread
func (e *Engine) Fulfill(ctx context.Context, req *requirement.ShopRequirement) (result *Result, err error) {
	if req == nil {
		return nil, fmt.Errorf("shop requirement cannot be nil")
	}
	if shared.IsActuationThread(ctx) {
		return nil, shared.ErrBlockingOnActuationThread
	}

	logger := logging.LoggerFromContext(ctx)
	r := &run{
		req:    req,
		sm:     shop.NewFulfillmentStateMachine(e.clock),
		result: &Result{State: shop.StateIdle},
		logger: logger,
	}
	result = r.result
	kind := req.Source().Kind

	defer func() {
		if p := recover(); p != nil {
			logger.Log("ERROR", "Shop fulfillment panicked", map[string]interface{}{
				"requirement": req.Key().String(),
				"state":       string(r.sm.State()),
				"panic":       fmt.Sprint(p),
			})
			r.fail(fmt.Sprintf("panic: %v", p))
			err = nil
		}
		result.Duration = r.sm.Elapsed()
		e.metrics.RecordOutcome(kind, result.State, result.Success)
		logger.Log("INFO", "Shop fulfillment finished", map[string]interface{}{
			"requirement":   req.Key().String(),
			"state":         string(result.State),
			"success":       result.Success,
			"offers_placed": result.OffersPlaced,
			"transacted":    result.Transacted,
			"hops":          result.Hops,
			"reason":        result.Reason,
		})
	}()

	// Step 1: Short-circuit completed requirements
	if req.IsCompleted() {
		r.finish(shop.StateAlreadyDone, true, "already completed")
		return result, nil
	}

	if ctx.Err() != nil {
		r.finish(shop.StateCancelled, false, "cancelled")
		return result, nil
	}

	req.ResetSession()
	e.restoreLedger(ctx, r)

	logger.Log("INFO", "Starting shop fulfillment", map[string]interface{}{
		"requirement": req.Key().String(),
		"operation":   string(req.Operation()),
		"market":      req.Source().String(),
		"pending":     len(req.PendingDemands()),
		"mandatory":   req.IsMandatory(),
	})

	// Step 2: Validate sell items
	if req.Operation() == shop.OperationSell {
		if reason, ok := e.validateSell(ctx, req); !ok {
			r.fail(reason)
			return result, nil
		}
	}

	// Step 3: Pre-protocol banking
	if e.bankingEnabled(req) && e.needsPreBank(ctx, req) {
		r.to(shop.StateBank)
		if err := e.preBank(ctx, req); err != nil {
			logger.Log("WARNING", "Pre-protocol banking failed", map[string]interface{}{
				"requirement": req.Key().String(),
				"error":       err.Error(),
			})
		}
		if ctx.Err() != nil {
			r.finish(shop.StateCancelled, false, "cancelled")
			return result, nil
		}
	}

	// Step 4: Run the market protocol
	switch kind {
	case shop.MarketKindExchange:
		e.runExchange(ctx, r)
	case shop.MarketKindShop:
		e.runShop(ctx, r)
	default:
		r.fail(fmt.Sprintf("unknown market kind %q", kind))
	}

	// Step 5: Post-protocol banking
	if e.config.Shop.DepositOnFinish && e.bankingEnabled(req) && r.result.Transacted > 0 {
		if err := e.depositProceeds(ctx, req); err != nil {
			logger.Log("WARNING", "Depositing proceeds failed", map[string]interface{}{
				"requirement": req.Key().String(),
				"error":       err.Error(),
			})
		}
	}

	return result, nil
}

// validateSell checks every pending item can actually be sold
func (e *Engine) validateSell(ctx context.Context, req *requirement.ShopRequirement) (string, bool) {
	inv := e.world.Inventory()
	for _, d := range req.PendingDemands() {
		item := d.Item()
		if !item.Tradeable {
			return fmt.Sprintf("%s is not tradeable", item), false
		}
		held := inv.Count(ctx, item.ID)
		if held == 0 && e.bankingEnabled(req) {
			held = e.world.Bank().CountByName(ctx, item.Name)
		}
		if held == 0 {
			return fmt.Sprintf("no %s held to sell", item), false
		}
	}
	return "", true
}

func (e *Engine) bankingEnabled(req *requirement.ShopRequirement) bool {
	return e.config.Shop.Banking && !req.Options().DisableBanking
}

func (e *Engine) hoppingEnabled(req *requirement.ShopRequirement) bool {
	return e.config.Shop.WorldHopping && !req.Options().DisableWorldHop
}

// pace waits for the action limiter
func (e *Engine) pace(ctx context.Context) error {
	return e.limiter.Wait(ctx)
}

func (e *Engine) recordTrade(ctx context.Context, r *run, item shop.Item, quantity, price int) {
	r.result.Transacted += quantity
	e.metrics.RecordTransacted(item.Source.Kind, r.req.Operation(), quantity)
	if e.trades == nil {
		return
	}
	sessionID := ""
	if s := shared.SessionFromContext(ctx); s != nil {
		sessionID = s.ID
	}
	record := shop.NewTradeRecord(sessionID, r.req.Key().String(), item, r.req.Operation(),
		quantity, price, e.world.Worlds().Current(ctx), e.clock.Now())
	if err := e.trades.Record(ctx, record); err != nil {
		r.logger.Log("WARNING", "Failed to record trade", map[string]interface{}{
			"item":  item.Name,
			"error": err.Error(),
		})
	}
}

func depthKey(req *requirement.ShopRequirement, itemID int) string {
	return fmt.Sprintf("%s#%d", req.Key(), itemID)
}

func (e *Engine) depth(req *requirement.ShopRequirement, itemID int) int {
	e.depthMu.Lock()
	defer e.depthMu.Unlock()
	return e.depths[depthKey(req, itemID)]
}

func (e *Engine) bumpDepth(req *requirement.ShopRequirement, itemID int) {
	e.depthMu.Lock()
	defer e.depthMu.Unlock()
	e.depths[depthKey(req, itemID)]++
}

func (e *Engine) resetDepth(req *requirement.ShopRequirement, itemID int) {
	e.depthMu.Lock()
	defer e.depthMu.Unlock()
	delete(e.depths, depthKey(req, itemID))
}
