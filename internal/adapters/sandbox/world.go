// Package sandbox is an in-memory game world implementing every port the
// engine consumes. It backs the CLI dry-run mode and the engine tests.
package sandbox

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/requisition-go/internal/domain/ports"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// ItemSeed registers an item the world knows about
type ItemSeed struct {
	ID        int                  `yaml:"id" validate:"required,gt=0"`
	Name      string               `yaml:"name" validate:"required"`
	Stackable bool                 `yaml:"stackable"`
	Slot      shared.EquipmentSlot `yaml:"slot"`
}

// PriceSeed seeds the exchange's price summary for one item
type PriceSeed struct {
	Average int `yaml:"average"`
	Samples int `yaml:"samples"`
	Guide   int `yaml:"guide"`
}

// ExchangeSeed configures the order-book market
type ExchangeSeed struct {
	Slots    int                  `yaml:"slots"`
	Location shared.WorldPoint    `yaml:"location"`
	Prices   map[string]PriceSeed `yaml:"prices"`
	// Fills is how many units of an item fill per read of the offers.
	// Items without an entry never fill.
	Fills map[string]int `yaml:"fills"`
}

// ShopSeed configures one direct-stock shop
type ShopSeed struct {
	Name       string                 `yaml:"name" validate:"required"`
	Stock      map[string]int         `yaml:"stock"`
	WorldStock map[int]map[string]int `yaml:"world_stock"`
	Prices     map[string]int         `yaml:"prices"`
}

// Seed is the initial state of a sandbox world
type Seed struct {
	Position     shared.WorldPoint               `yaml:"position"`
	Items        []ItemSeed                      `yaml:"items" validate:"dive"`
	Inventory    map[string]int                  `yaml:"inventory"`
	Bank         map[string]int                  `yaml:"bank"`
	BankLocation shared.WorldPoint               `yaml:"bank_location"`
	Equipment    map[shared.EquipmentSlot]string `yaml:"equipment"`
	Exchange     ExchangeSeed                    `yaml:"exchange"`
	Shops        []ShopSeed                      `yaml:"shops" validate:"dive"`
	Worlds       []int                           `yaml:"worlds"`
	CurrentWorld int                             `yaml:"current_world"`
	Population   map[int]int                     `yaml:"population"`
	Spellbook    string                          `yaml:"spellbook"`
	Ground       map[string]int                  `yaml:"ground"`
	Unreachable  []shared.WorldPoint             `yaml:"unreachable"`
}

type itemInfo struct {
	id        int
	name      string
	stackable bool
	slot      shared.EquipmentSlot
}

type invSlot struct {
	itemID   int
	quantity int
}

type shopState struct {
	name         string
	base         map[string]int
	perWorld     map[int]map[string]int
	prices       map[string]int
	openFailures int
}

// World is a thread-safe simulated game world
type World struct {
	mu sync.Mutex

	items  map[int]itemInfo
	byName map[string]int

	position    shared.WorldPoint
	unreachable map[shared.WorldPoint]bool

	inventory    [shared.InventorySize]*invSlot
	bank         map[string]int
	bankLocation shared.WorldPoint
	equipment    map[shared.EquipmentSlot]int

	exchangeLocation shared.WorldPoint
	offers           []shop.Offer
	prices           map[int]shop.PriceSummary
	fills            map[int]int
	exchangeOpen     bool

	shops    map[string]*shopState
	openShop string

	worlds     []int
	current    int
	population map[int]int
	refused    map[int]bool

	spellbook string
	runePouch map[int]int
	ground    map[int]int
}

// NewWorld builds a world from seed
func NewWorld(seed Seed) (*World, error) {
	w := &World{
		items:            make(map[int]itemInfo),
		byName:           make(map[string]int),
		position:         seed.Position,
		unreachable:      make(map[shared.WorldPoint]bool),
		bank:             make(map[string]int),
		bankLocation:     seed.BankLocation,
		equipment:        make(map[shared.EquipmentSlot]int),
		exchangeLocation: seed.Exchange.Location,
		prices:           make(map[int]shop.PriceSummary),
		fills:            make(map[int]int),
		shops:            make(map[string]*shopState),
		worlds:           append([]int(nil), seed.Worlds...),
		current:          seed.CurrentWorld,
		population:       make(map[int]int),
		refused:          make(map[int]bool),
		spellbook:        seed.Spellbook,
		runePouch:        make(map[int]int),
		ground:           make(map[int]int),
	}
	if w.spellbook == "" {
		w.spellbook = "STANDARD"
	}
	if len(w.worlds) == 0 {
		w.worlds = []int{301}
	}
	if w.current == 0 {
		w.current = w.worlds[0]
	}
	for id, pop := range seed.Population {
		w.population[id] = pop
	}
	for _, p := range seed.Unreachable {
		w.unreachable[p] = true
	}

	for _, it := range seed.Items {
		w.RegisterItem(it.ID, it.Name, it.Stackable, it.Slot)
	}

	for name, qty := range seed.Inventory {
		id, err := w.lookup(name)
		if err != nil {
			return nil, err
		}
		if added := w.addToInventory(id, qty); added < qty {
			return nil, fmt.Errorf("inventory seed overflows: %s", name)
		}
	}
	for name, qty := range seed.Bank {
		w.bank[name] = qty
	}
	for slot, name := range seed.Equipment {
		id, err := w.lookup(name)
		if err != nil {
			return nil, err
		}
		w.equipment[slot] = id
	}

	slots := seed.Exchange.Slots
	if slots <= 0 {
		slots = 8
	}
	w.offers = make([]shop.Offer, slots)
	for i := range w.offers {
		w.offers[i] = shop.Offer{Slot: i, Status: shop.OfferStatusEmpty}
	}
	for name, p := range seed.Exchange.Prices {
		id, err := w.lookup(name)
		if err != nil {
			return nil, err
		}
		w.prices[id] = shop.PriceSummary{WeightedAverage: p.Average, Samples: p.Samples, GuidePrice: p.Guide}
	}
	for name, n := range seed.Exchange.Fills {
		id, err := w.lookup(name)
		if err != nil {
			return nil, err
		}
		w.fills[id] = n
	}

	for _, s := range seed.Shops {
		st := &shopState{
			name:     s.Name,
			base:     copyStock(s.Stock),
			perWorld: make(map[int]map[string]int),
			prices:   copyStock(s.Prices),
		}
		for world, stock := range s.WorldStock {
			st.perWorld[world] = copyStock(stock)
		}
		w.shops[s.Name] = st
	}

	for name, qty := range seed.Ground {
		id, err := w.lookup(name)
		if err != nil {
			return nil, err
		}
		w.ground[id] = qty
	}
	return w, nil
}

func copyStock(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// RegisterItem adds an item to the world's catalog
func (w *World) RegisterItem(id int, name string, stackable bool, slot shared.EquipmentSlot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[id] = itemInfo{id: id, name: name, stackable: stackable, slot: slot}
	w.byName[name] = id
}

func (w *World) lookup(name string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.byName[name]
	if !ok {
		return 0, fmt.Errorf("unknown item %q", name)
	}
	return id, nil
}

// Port accessors

func (w *World) Movement() ports.Movement    { return movement{w} }
func (w *World) Inventory() ports.Inventory  { return inventory{w} }
func (w *World) Equipment() ports.Equipment  { return equipment{w} }
func (w *World) Bank() ports.Bank            { return bank{w} }
func (w *World) Exchange() ports.Exchange    { return exchange{w} }
func (w *World) Shop() ports.Shop            { return shopPort{w} }
func (w *World) Worlds() ports.WorldSelector { return worldSelector{w} }
func (w *World) Spellbook() ports.Spellbook  { return spellbook{w} }
func (w *World) RunePouch() ports.RunePouch  { return runePouch{w} }
func (w *World) Looter() ports.Looter        { return looter{w} }

var _ ports.World = (*World)(nil)
