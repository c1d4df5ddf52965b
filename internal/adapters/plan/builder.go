package plan

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// builder turns DTOs into domain requirements against the plan's catalog
type builder struct {
	file     *File
	pricing  shop.ExchangePricing
	context  shared.TaskContext
	priority shared.Priority
	items    map[string]shop.Item
	slots    map[string]shared.EquipmentSlot
}

func newBuilder(file *File, pricing shop.ExchangePricing) (*builder, error) {
	b := &builder{
		file:     file,
		pricing:  pricing,
		context:  shared.TaskContextBoth,
		priority: shared.PriorityRecommended,
		items:    make(map[string]shop.Item, len(file.Items)),
		slots:    make(map[string]shared.EquipmentSlot, len(file.Items)),
	}
	if file.Context != "" {
		b.context = shared.TaskContext(file.Context)
	}
	if file.Priority != "" {
		b.priority = shared.Priority(file.Priority)
	}

	for _, ci := range file.Items {
		if _, dup := b.items[ci.Name]; dup {
			return nil, fmt.Errorf("catalog lists %q twice", ci.Name)
		}
		slot, err := shared.ParseEquipmentSlot(string(ci.Slot))
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", ci.Name, err)
		}
		tradeable := ci.Tradeable == nil || *ci.Tradeable
		item, err := shop.NewItem(ci.ID, ci.Name, ci.Stackable, tradeable, ci.Source)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", ci.Name, err)
		}
		b.items[ci.Name] = item
		b.slots[ci.Name] = slot
	}
	return b, nil
}

// seed returns the world seed with every catalog item registered
func (b *builder) seed() sandbox.Seed {
	seed := b.file.World
	known := make(map[int]bool, len(seed.Items))
	for _, it := range seed.Items {
		known[it.ID] = true
	}
	for _, ci := range b.file.Items {
		if known[ci.ID] {
			continue
		}
		seed.Items = append(seed.Items, sandbox.ItemSeed{
			ID:        ci.ID,
			Name:      ci.Name,
			Stackable: ci.Stackable,
			Slot:      b.slots[ci.Name],
		})
	}
	return seed
}

func (b *builder) item(name string) (shop.Item, error) {
	item, ok := b.items[name]
	if !ok {
		return shop.Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	return item, nil
}

func (b *builder) common(dto RequirementDTO, inherited shared.TaskContext) (shared.Priority, shared.TaskContext) {
	priority := b.priority
	if dto.Priority != "" {
		priority = shared.Priority(dto.Priority)
	}
	tc := inherited
	if dto.Context != "" {
		tc = shared.TaskContext(dto.Context)
	}
	return priority, tc
}

func (b *builder) build(dto RequirementDTO, inherited shared.TaskContext) (requirement.Requirement, error) {
	priority, tc := b.common(dto, inherited)

	switch requirement.Kind(dto.Kind) {
	case requirement.KindItem:
		return b.buildItem(dto, tc)

	case requirement.KindShop:
		return b.buildShop(dto, priority, tc)

	case requirement.KindLocation:
		return requirement.NewLocationRequirement(dto.Name, dto.Location, dto.Tolerance, priority, dto.Rating, tc)

	case requirement.KindSpellbook:
		return requirement.NewSpellbookRequirement(dto.Book, priority, dto.Rating, tc)

	case requirement.KindInventorySetup:
		items := make([]*requirement.ItemRequirement, 0, len(dto.Items))
		for i, child := range dto.Items {
			child.Kind = string(requirement.KindItem)
			if child.Placement == "" {
				child.Placement = string(requirement.PlacementInventory)
			}
			r, err := b.buildItem(child, tc)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, r)
		}
		return requirement.NewInventorySetupRequirement(dto.Name, items, priority, dto.Rating, tc)

	case requirement.KindRunePouch:
		runes := make(map[int]int, len(dto.Runes))
		for name, amount := range dto.Runes {
			item, err := b.item(name)
			if err != nil {
				return nil, err
			}
			runes[item.ID] = amount
		}
		return requirement.NewRunePouchRequirement(runes, priority, dto.Rating, tc)

	case requirement.KindLoot:
		ids := make([]int, 0, len(dto.Loot))
		for _, name := range dto.Loot {
			item, err := b.item(name)
			if err != nil {
				return nil, err
			}
			ids = append(ids, item.ID)
		}
		return requirement.NewLootRequirement(ids, dto.Amount, dto.Radius, priority, dto.Rating, tc)

	case requirement.KindConditional:
		steps := make([]requirement.Step, 0, len(dto.Steps))
		for i, s := range dto.Steps {
			then, err := b.build(s.Then, tc)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			when, err := b.condition(s.When)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			steps = append(steps, requirement.Step{Name: s.Name, When: when, Then: then})
		}
		return requirement.NewConditionalRequirement(dto.Name, steps, priority, dto.Rating, tc)

	case requirement.KindOr:
		children := make([]requirement.Requirement, 0, len(dto.Children))
		for i, c := range dto.Children {
			// children always share the group's context
			c.Context = string(tc)
			child, err := b.build(c, tc)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			children = append(children, child)
		}
		return requirement.NewLogicalRequirement(tc, dto.Description, children...)
	}
	return nil, fmt.Errorf("unsupported kind %q", dto.Kind)
}

func (b *builder) buildItem(dto RequirementDTO, tc shared.TaskContext) (*requirement.ItemRequirement, error) {
	priority, _ := b.common(dto, tc)
	item, err := b.item(dto.Item)
	if err != nil {
		return nil, err
	}

	slot, err := shared.ParseEquipmentSlot(dto.Slot)
	if err != nil {
		return nil, err
	}
	placement := requirement.Placement(dto.Placement)
	if placement == "" {
		placement = requirement.PlacementEither
	}
	if !slot.IsSet() && placement != requirement.PlacementInventory {
		slot = b.slots[dto.Item]
	}
	invSlot := shared.AnyInventorySlot
	if dto.InventorySlot != nil {
		invSlot = *dto.InventorySlot
	}

	return requirement.NewItemRequirement(requirement.ItemSpec{
		ItemID:        item.ID,
		Name:          item.Name,
		Amount:        dto.Amount,
		Placement:     placement,
		EquipmentSlot: slot,
		InventorySlot: invSlot,
		Priority:      priority,
		Rating:        dto.Rating,
		Context:       tc,
		Description:   dto.Description,
	})
}

func (b *builder) buildShop(dto RequirementDTO, priority shared.Priority, tc shared.TaskContext) (*requirement.ShopRequirement, error) {
	demands := make([]*shop.ItemDemand, 0, len(dto.Demands))
	for _, d := range dto.Demands {
		item, err := b.item(d.Item)
		if err != nil {
			return nil, err
		}
		demand, err := shop.NewItemDemand(item, d.Amount, d.BaseStock, d.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("demand %q: %w", d.Item, err)
		}
		pricing := b.pricing
		pricing.MaxPrice = d.MaxPrice
		pricing.MinPrice = d.MinPrice
		demands = append(demands, demand.WithExchangePricing(pricing))
	}

	return requirement.NewShopRequirement(
		shop.Operation(dto.Operation),
		demands,
		priority,
		dto.Rating,
		tc,
		dto.Description,
		requirement.ShopOptions{
			DisableWorldHop: dto.DisableWorldHop,
			DisableBanking:  dto.DisableBanking,
		},
	)
}

// condition resolves a ConditionDTO into a live check
func (b *builder) condition(c ConditionDTO) (requirement.Condition, error) {
	atLeast := c.AtLeast
	if atLeast <= 0 {
		atLeast = 1
	}

	switch {
	case c.Carrying != "":
		item, err := b.item(c.Carrying)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, env *requirement.Environment) bool {
			return env.World.Inventory().Count(ctx, item.ID) >= atLeast
		}, nil

	case c.Missing != "":
		item, err := b.item(c.Missing)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, env *requirement.Environment) bool {
			return env.World.Inventory().Count(ctx, item.ID) < atLeast
		}, nil

	case c.Near != nil:
		target, radius := *c.Near, c.Radius
		return func(ctx context.Context, env *requirement.Environment) bool {
			return env.World.Movement().IsInArea(ctx, target, radius)
		}, nil
	}
	return requirement.Always, nil
}
