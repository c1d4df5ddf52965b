package requirement

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// Placement says where an item must end up
type Placement string

const (
	PlacementEquipment Placement = "EQUIPMENT"
	PlacementInventory Placement = "INVENTORY"
	PlacementEither    Placement = "EITHER"
)

// bankWalkTolerance is how close to the bank booth counts as arrived
const bankWalkTolerance = 5

// ParsePlacement converts a string into a Placement
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case PlacementEquipment, PlacementInventory, PlacementEither:
		return Placement(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlacement, s)
}

// ItemSpec collects the fields of an ItemRequirement
type ItemSpec struct {
	ItemID        int
	Name          string
	Amount        int
	Placement     Placement
	EquipmentSlot shared.EquipmentSlot
	InventorySlot int
	Priority      shared.Priority
	Rating        int
	Context       shared.TaskContext
	Description   string
}

// ItemRequirement asks for an item to be worn, carried, or either.
//
// Business rules:
//   - EQUIPMENT placement needs an equipment slot
//   - a fixed inventory slot only makes sense for INVENTORY placement
//   - EITHER may name the slot the item would be worn in
type ItemRequirement struct {
	base
	itemID        int
	name          string
	amount        int
	placement     Placement
	equipmentSlot shared.EquipmentSlot
	inventorySlot int
}

// NewItemRequirement creates an item requirement with validation
func NewItemRequirement(spec ItemSpec) (*ItemRequirement, error) {
	b, err := newBase(spec.Priority, spec.Rating, spec.Context, spec.Description)
	if err != nil {
		return nil, err
	}
	if spec.ItemID <= 0 {
		return nil, shared.NewValidationError("item_id", "must be positive")
	}
	if spec.Amount <= 0 {
		spec.Amount = 1
	}
	if _, err := ParsePlacement(string(spec.Placement)); err != nil {
		return nil, err
	}
	if spec.InventorySlot < shared.AnyInventorySlot || spec.InventorySlot >= shared.InventorySize {
		return nil, shared.NewValidationError("inventory_slot", fmt.Sprintf("out of range: %d", spec.InventorySlot))
	}

	switch spec.Placement {
	case PlacementEquipment:
		if !spec.EquipmentSlot.IsSet() {
			return nil, fmt.Errorf("%w: equipment placement without slot", ErrInvalidPlacement)
		}
		if spec.InventorySlot != shared.AnyInventorySlot {
			return nil, fmt.Errorf("%w: equipment placement with inventory slot", ErrInvalidPlacement)
		}
	case PlacementEither:
		if spec.InventorySlot != shared.AnyInventorySlot {
			return nil, fmt.Errorf("%w: flexible placement with fixed inventory slot", ErrInvalidPlacement)
		}
	}

	if b.description == "" {
		b.description = fmt.Sprintf("%d x %s (%s)", spec.Amount, spec.Name, spec.Placement)
	}

	return &ItemRequirement{
		base:          b,
		itemID:        spec.ItemID,
		name:          spec.Name,
		amount:        spec.Amount,
		placement:     spec.Placement,
		equipmentSlot: spec.EquipmentSlot,
		inventorySlot: spec.InventorySlot,
	}, nil
}

func (r *ItemRequirement) Kind() Kind {
	return KindItem
}

func (r *ItemRequirement) Key() Key {
	return Key{
		Kind:    KindItem,
		Context: r.taskContext,
		ID:      fmt.Sprintf("%d:%s:%s:%d", r.itemID, r.placement, r.equipmentSlot, r.inventorySlot),
	}
}

func (r *ItemRequirement) ItemIDs() []int {
	return []int{r.itemID}
}

func (r *ItemRequirement) ItemID() int {
	return r.itemID
}

func (r *ItemRequirement) Name() string {
	return r.name
}

func (r *ItemRequirement) Amount() int {
	return r.amount
}

func (r *ItemRequirement) Placement() Placement {
	return r.placement
}

func (r *ItemRequirement) EquipmentSlot() shared.EquipmentSlot {
	return r.equipmentSlot
}

func (r *ItemRequirement) InventorySlot() int {
	return r.inventorySlot
}

// HasFixedSlot returns true when the item must occupy one specific slot
func (r *ItemRequirement) HasFixedSlot() bool {
	switch r.placement {
	case PlacementEquipment:
		return true
	case PlacementInventory:
		return r.inventorySlot != shared.AnyInventorySlot
	default:
		return false
	}
}

// IsFlexible returns true when any inventory slot (or wearing it) will do
func (r *ItemRequirement) IsFlexible() bool {
	return !r.HasFixedSlot()
}

func (r *ItemRequirement) IsFulfilled(ctx context.Context, env *Environment) bool {
	if env == nil || env.World == nil {
		return false
	}
	inv := env.World.Inventory()
	eq := env.World.Equipment()

	switch r.placement {
	case PlacementEquipment:
		id, ok := eq.ItemInSlot(ctx, r.equipmentSlot)
		return ok && id == r.itemID
	case PlacementInventory:
		if r.inventorySlot != shared.AnyInventorySlot {
			id, ok := inv.ItemInSlot(ctx, r.inventorySlot)
			return ok && id == r.itemID
		}
		return inv.Count(ctx, r.itemID) >= r.amount
	default:
		if r.equipmentSlot.IsSet() {
			if id, ok := eq.ItemInSlot(ctx, r.equipmentSlot); ok && id == r.itemID {
				return true
			}
		}
		return inv.Count(ctx, r.itemID) >= r.amount
	}
}

// Fulfill withdraws missing units from the bank and equips the item when
// it has to be worn
func (r *ItemRequirement) Fulfill(ctx context.Context, env *Environment) bool {
	if r.IsFulfilled(ctx, env) {
		return true
	}
	if env == nil || env.World == nil {
		return false
	}

	inv := env.World.Inventory()
	missing := r.amount - inv.Count(ctx, r.itemID)
	if missing > 0 {
		bank := env.World.Bank()
		reached, err := env.World.Movement().WalkTo(ctx, bank.Location(), bankWalkTolerance)
		if err != nil || !reached {
			return false
		}
		if err := bank.Open(ctx); err != nil {
			return false
		}
		err = bank.Withdraw(ctx, r.name, missing)
		_ = bank.Close(ctx)
		if err != nil {
			return false
		}
	}

	if r.placement == PlacementEquipment {
		if err := env.World.Equipment().Equip(ctx, r.itemID); err != nil {
			return false
		}
	}

	return r.IsFulfilled(ctx, env)
}
