package plan

import (
	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// File is the on-disk shape of a requirement plan
type File struct {
	Name     string `yaml:"name" validate:"required"`
	Context  string `yaml:"context" validate:"omitempty,oneof=PRE_TASK POST_TASK BOTH"`
	Priority string `yaml:"priority" validate:"omitempty,oneof=MANDATORY RECOMMENDED OPTIONAL"`

	// Items is the catalog requirements refer to by name
	Items        []CatalogItem    `yaml:"items" validate:"dive"`
	Requirements []RequirementDTO `yaml:"requirements" validate:"dive"`
	External     []RequirementDTO `yaml:"external" validate:"dive"`

	// World seeds the sandbox used by dry runs
	World sandbox.Seed `yaml:"world"`
}

// CatalogItem describes one item and where it is traded
type CatalogItem struct {
	ID        int                  `yaml:"id" validate:"required,gt=0"`
	Name      string               `yaml:"name" validate:"required"`
	Stackable bool                 `yaml:"stackable"`
	Tradeable *bool                `yaml:"tradeable"`
	Slot      shared.EquipmentSlot `yaml:"slot"`
	Source    shop.Source          `yaml:"source"`
}

// RequirementDTO is a flat union of every requirement kind. Only the
// fields of the named kind are read.
type RequirementDTO struct {
	Kind        string `yaml:"kind" validate:"required,oneof=ITEM SHOP LOCATION SPELLBOOK INVENTORY_SETUP RUNE_POUCH LOOT CONDITIONAL OR"`
	Priority    string `yaml:"priority" validate:"omitempty,oneof=MANDATORY RECOMMENDED OPTIONAL"`
	Rating      int    `yaml:"rating" validate:"min=0,max=10"`
	Context     string `yaml:"context" validate:"omitempty,oneof=PRE_TASK POST_TASK BOTH"`
	Description string `yaml:"description"`
	Name        string `yaml:"name"`

	// ITEM
	Item          string `yaml:"item"`
	Amount        int    `yaml:"amount" validate:"min=0"`
	Placement     string `yaml:"placement" validate:"omitempty,oneof=EQUIPMENT INVENTORY EITHER"`
	Slot          string `yaml:"slot"`
	InventorySlot *int   `yaml:"inventory_slot"`

	// SHOP
	Operation       string      `yaml:"operation" validate:"omitempty,oneof=BUY SELL"`
	Demands         []DemandDTO `yaml:"demands" validate:"dive"`
	DisableWorldHop bool        `yaml:"disable_world_hop"`
	DisableBanking  bool        `yaml:"disable_banking"`

	// LOCATION
	Location  shared.WorldPoint `yaml:"location"`
	Tolerance int               `yaml:"tolerance" validate:"min=0"`

	// SPELLBOOK
	Book string `yaml:"book"`

	// INVENTORY_SETUP
	Items []RequirementDTO `yaml:"items" validate:"dive"`

	// RUNE_POUCH
	Runes map[string]int `yaml:"runes"`

	// LOOT
	Loot   []string `yaml:"loot"`
	Radius int      `yaml:"radius" validate:"min=0"`

	// CONDITIONAL
	Steps []StepDTO `yaml:"steps" validate:"dive"`

	// OR
	Children []RequirementDTO `yaml:"children" validate:"dive"`
}

// DemandDTO is one item line of a shop requirement
type DemandDTO struct {
	Item      string `yaml:"item" validate:"required"`
	Amount    int    `yaml:"amount" validate:"required,gt=0"`
	BaseStock int    `yaml:"base_stock" validate:"min=0"`
	Tolerance int    `yaml:"tolerance" validate:"min=0"`
	MaxPrice  int    `yaml:"max_price" validate:"min=0"`
	MinPrice  int    `yaml:"min_price" validate:"min=0"`
}

// StepDTO is one branch of a conditional requirement
type StepDTO struct {
	Name string         `yaml:"name"`
	When ConditionDTO   `yaml:"when"`
	Then RequirementDTO `yaml:"then"`
}

// ConditionDTO selects a built-in condition. An empty condition always holds.
type ConditionDTO struct {
	// Carrying holds while at least AtLeast of the item is in the inventory
	Carrying string `yaml:"carrying"`
	// Missing holds while fewer than AtLeast of the item are carried
	Missing string `yaml:"missing"`
	AtLeast int    `yaml:"at_least" validate:"min=0"`
	// Near holds while the player stands within Radius of the point
	Near   *shared.WorldPoint `yaml:"near"`
	Radius int                `yaml:"radius" validate:"min=0"`
}
