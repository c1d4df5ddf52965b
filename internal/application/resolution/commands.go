package resolution

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/application/mediator"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// ResolveRequirementsCommand resolves every requirement registered for a task phase
type ResolveRequirementsCommand struct {
	TaskContext shared.TaskContext
	Operation   string
}

// ResolveRequirementsHandler handles ResolveRequirementsCommand
type ResolveRequirementsHandler struct {
	resolver *Resolver
	store    *store.RequirementStore
	env      *requirement.Environment
}

// NewResolveRequirementsHandler creates a new ResolveRequirementsHandler
func NewResolveRequirementsHandler(resolver *Resolver, s *store.RequirementStore, env *requirement.Environment) *ResolveRequirementsHandler {
	return &ResolveRequirementsHandler{resolver: resolver, store: s, env: env}
}

// Handle runs the resolver and returns its *Report
func (h *ResolveRequirementsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ResolveRequirementsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResolveRequirementsCommand")
	}
	if err := h.store.ValidateConsistency(ctx); err != nil {
		return nil, fmt.Errorf("requirement store is inconsistent: %w", err)
	}
	return h.resolver.Resolve(ctx, h.store, cmd.TaskContext, h.env)
}

// FulfillShopCommand drives one shop requirement through the market engine
type FulfillShopCommand struct {
	Requirement *requirement.ShopRequirement
	Operation   string
}

// FulfillShopHandler handles FulfillShopCommand
type FulfillShopHandler struct {
	engine *fulfillment.Engine
}

// NewFulfillShopHandler creates a new FulfillShopHandler
func NewFulfillShopHandler(engine *fulfillment.Engine) *FulfillShopHandler {
	return &FulfillShopHandler{engine: engine}
}

// Handle returns the engine's *fulfillment.Result
func (h *FulfillShopHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*FulfillShopCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FulfillShopCommand")
	}
	if cmd.Requirement == nil {
		return nil, fmt.Errorf("shop requirement is required")
	}
	return h.engine.Fulfill(ctx, cmd.Requirement)
}

// RegisterHandlers wires the resolution commands into m
func RegisterHandlers(m mediator.Mediator, resolver *Resolver, s *store.RequirementStore, env *requirement.Environment, engine *fulfillment.Engine) error {
	if err := mediator.RegisterHandler[*ResolveRequirementsCommand](m, NewResolveRequirementsHandler(resolver, s, env)); err != nil {
		return err
	}
	return mediator.RegisterHandler[*FulfillShopCommand](m, NewFulfillShopHandler(engine))
}
