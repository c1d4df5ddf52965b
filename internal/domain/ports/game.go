package ports

import (
	"context"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// The interfaces below are the narrow contracts the engine consumes from
// perception and actuation code it does not own. Adapters implement them;
// the domain and application layers depend only on these definitions.
//
// Every read goes to the live game state. Implementations must not cache
// stock, offers or inventory across game ticks.

// Movement walks the player around the world
type Movement interface {
	// WalkTo walks until within tolerance tiles of target. Returns false if
	// the destination could not be reached.
	WalkTo(ctx context.Context, target shared.WorldPoint, tolerance int) (bool, error)
	IsInArea(ctx context.Context, target shared.WorldPoint, radius int) bool
	Position(ctx context.Context) shared.WorldPoint
}

// Inventory reads the player's carried items
type Inventory interface {
	Count(ctx context.Context, itemID int) int
	CountByName(ctx context.Context, name string) int
	CountMatching(ctx context.Context, match func(itemID int, name string) bool) int
	FreeSlots(ctx context.Context) int
	// ItemInSlot returns the item id in a fixed inventory slot
	ItemInSlot(ctx context.Context, slot int) (int, bool)
}

// Equipment reads and changes worn equipment
type Equipment interface {
	ItemInSlot(ctx context.Context, slot shared.EquipmentSlot) (int, bool)
	Equip(ctx context.Context, itemID int) error
}

// Bank is the player's item and coin storage
type Bank interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Location() shared.WorldPoint
	CountByName(ctx context.Context, name string) int
	Deposit(ctx context.Context, name string, amount int) error
	Withdraw(ctx context.Context, name string, amount int) error
}

// Exchange is an order-book market with a fixed number of offer slots
type Exchange interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Location() shared.WorldPoint
	// Offers returns every slot, empty ones included
	Offers(ctx context.Context) ([]shop.Offer, error)
	PlaceOffer(ctx context.Context, slot int, item shop.Item, op shop.Operation, quantity, price int) error
	CancelOffer(ctx context.Context, slot int) error
	// CollectOffer empties a finished slot and returns the quantity of
	// items (BUY) or units sold (SELL) handed over
	CollectOffer(ctx context.Context, slot int) (int, error)
	PriceSummary(ctx context.Context, itemID int) (shop.PriceSummary, error)
}

// Shop is a direct-stock market operated through an NPC interface
type Shop interface {
	Open(ctx context.Context, source shop.Source) error
	Close(ctx context.Context) error
	IsOpen(ctx context.Context) bool
	// Stock returns the live stock for an item and whether the item is
	// listed at all
	Stock(ctx context.Context, itemName string) (int, bool, error)
	Buy(ctx context.Context, itemName string, quantity int) error
	Sell(ctx context.Context, itemName string, quantity int) error
}

// HopStrategy picks the next world to rotate to
type HopStrategy string

const (
	HopStrategySequential HopStrategy = "sequential"
	HopStrategyBest       HopStrategy = "best"
)

// WorldSelector rotates between server instances
type WorldSelector interface {
	Current(ctx context.Context) int
	// Next proposes a world that is not in excluded, or false if none is left
	Next(ctx context.Context, strategy HopStrategy, excluded map[int]bool) (int, bool)
	Hop(ctx context.Context, world int) error
}

// Spellbook reads and switches the active spellbook
type Spellbook interface {
	Active(ctx context.Context) string
	Switch(ctx context.Context, book string) error
}

// RunePouch reads and fills the rune pouch
type RunePouch interface {
	Count(ctx context.Context, runeID int) int
	Fill(ctx context.Context, runeID, amount int) error
}

// Looter picks up ground items
type Looter interface {
	// Loot picks up any of itemIDs within radius and returns how many were taken
	Loot(ctx context.Context, itemIDs []int, radius int) (int, error)
}

// World aggregates every collaborator contract
type World interface {
	Movement() Movement
	Inventory() Inventory
	Equipment() Equipment
	Bank() Bank
	Exchange() Exchange
	Shop() Shop
	Worlds() WorldSelector
	Spellbook() Spellbook
	RunePouch() RunePouch
	Looter() Looter
}
