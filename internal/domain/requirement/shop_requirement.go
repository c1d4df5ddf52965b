package requirement

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// ShopOptions lets a requirement opt out of recovery strategies the engine
// would otherwise use
type ShopOptions struct {
	DisableWorldHop bool
	DisableBanking  bool
}

// ShopRequirement asks for a set of items to be bought from, or sold to,
// exactly one market. Progress lives in the ItemDemand children and
// survives failed attempts.
//
// Session-scoped state (offer recovery ledger, worlds known to be bad)
// is private to the requirement so concurrent requirements never share it.
type ShopRequirement struct {
	base
	source    shop.Source
	operation shop.Operation
	demands   []*shop.ItemDemand
	options   ShopOptions
	ledger    *shop.OfferRecoveryLedger

	mu             sync.Mutex
	excludedWorlds map[int]bool
}

// NewShopRequirement creates a shop requirement.
//
// Fails fast when the demand set is empty, lists an item twice, or mixes
// items sourced from different shops.
func NewShopRequirement(
	operation shop.Operation,
	demands []*shop.ItemDemand,
	priority shared.Priority,
	rating int,
	taskContext shared.TaskContext,
	description string,
	options ShopOptions,
) (*ShopRequirement, error) {
	b, err := newBase(priority, rating, taskContext, description)
	if err != nil {
		return nil, err
	}
	if _, err := shop.ParseOperation(string(operation)); err != nil {
		return nil, shared.NewConfigurationError("shop requirement", err.Error())
	}
	if len(demands) == 0 {
		return nil, shared.NewConfigurationError("shop requirement", ErrEmptyRequirement.Error())
	}

	source := demands[0].Item().Source
	seen := make(map[int]bool, len(demands))
	for _, d := range demands {
		if d == nil {
			return nil, shared.NewConfigurationError("shop requirement", "nil demand")
		}
		item := d.Item()
		if !item.Source.Equals(source) {
			return nil, shared.NewConfigurationError("shop requirement",
				fmt.Sprintf("item %s is sourced from %s, expected %s", item, item.Source, source))
		}
		if seen[item.ID] {
			return nil, shared.NewConfigurationError("shop requirement",
				fmt.Sprintf("%s: %s", ErrDuplicateShopItem, item))
		}
		seen[item.ID] = true
	}

	if b.description == "" {
		names := make([]string, len(demands))
		for i, d := range demands {
			names[i] = d.Item().Name
		}
		b.description = fmt.Sprintf("%s %s at %s", operation, strings.Join(names, ", "), source.Name)
	}

	ds := make([]*shop.ItemDemand, len(demands))
	copy(ds, demands)

	return &ShopRequirement{
		base:           b,
		source:         source,
		operation:      operation,
		demands:        ds,
		options:        options,
		ledger:         shop.NewOfferRecoveryLedger(),
		excludedWorlds: make(map[int]bool),
	}, nil
}

func (r *ShopRequirement) Kind() Kind {
	return KindShop
}

func (r *ShopRequirement) Key() Key {
	ids := r.ItemIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return Key{
		Kind:    KindShop,
		Context: r.taskContext,
		ID:      fmt.Sprintf("%s:%s:%s:%s", r.operation, r.source.Name, r.source.NPC, strings.Join(parts, ",")),
	}
}

// ItemIDs returns the demanded item ids in ascending order
func (r *ShopRequirement) ItemIDs() []int {
	ids := make([]int, len(r.demands))
	for i, d := range r.demands {
		ids[i] = d.Item().ID
	}
	sort.Ints(ids)
	return ids
}

func (r *ShopRequirement) Source() shop.Source {
	return r.source
}

func (r *ShopRequirement) Operation() shop.Operation {
	return r.operation
}

func (r *ShopRequirement) Options() ShopOptions {
	return r.options
}

// Ledger returns the offer recovery ledger for this requirement
func (r *ShopRequirement) Ledger() *shop.OfferRecoveryLedger {
	return r.ledger
}

// Demands returns every demand in registration order
func (r *ShopRequirement) Demands() []*shop.ItemDemand {
	out := make([]*shop.ItemDemand, len(r.demands))
	copy(out, r.demands)
	return out
}

// PendingDemands returns the demands not yet completed
func (r *ShopRequirement) PendingDemands() []*shop.ItemDemand {
	out := make([]*shop.ItemDemand, 0, len(r.demands))
	for _, d := range r.demands {
		if !d.IsCompleted() {
			out = append(out, d)
		}
	}
	return out
}

// DemandFor returns the demand for an item id
func (r *ShopRequirement) DemandFor(itemID int) (*shop.ItemDemand, bool) {
	for _, d := range r.demands {
		if d.Item().ID == itemID {
			return d, true
		}
	}
	return nil, false
}

// IsCompleted returns true once every demand is completed
func (r *ShopRequirement) IsCompleted() bool {
	for _, d := range r.demands {
		if !d.IsCompleted() {
			return false
		}
	}
	return true
}

// ExcludeWorld remembers a world as bad for the rest of the session
func (r *ShopRequirement) ExcludeWorld(world int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.excludedWorlds[world] = true
}

// ExcludedWorlds returns a copy of the session's bad worlds
func (r *ShopRequirement) ExcludedWorlds() map[int]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]bool, len(r.excludedWorlds))
	for w := range r.excludedWorlds {
		out[w] = true
	}
	return out
}

// ResetSession clears session-scoped state at the start of a top-level
// fulfillment attempt. Demand progress and the offer ledger are kept.
func (r *ShopRequirement) ResetSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.excludedWorlds = make(map[int]bool)
}

func (r *ShopRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	return r.IsCompleted()
}

// Fulfill hands the requirement to the market engine
func (r *ShopRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsCompleted() {
		return true
	}
	if env == nil || env.Shops == nil {
		return !r.IsMandatory()
	}
	return env.Shops.FulfillShop(ctx, r)
}
