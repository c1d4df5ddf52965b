package sandbox

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// The helpers below expect w.mu to be held by the caller.

func (w *World) countInventory(itemID int) int {
	n := 0
	for _, s := range w.inventory {
		if s != nil && s.itemID == itemID {
			n += s.quantity
		}
	}
	return n
}

func (w *World) freeSlots() int {
	n := 0
	for _, s := range w.inventory {
		if s == nil {
			n++
		}
	}
	return n
}

// addToInventory adds up to qty units and returns how many fit
func (w *World) addToInventory(itemID, qty int) int {
	if qty <= 0 {
		return 0
	}
	info := w.items[itemID]
	if info.stackable {
		for _, s := range w.inventory {
			if s != nil && s.itemID == itemID {
				s.quantity += qty
				return qty
			}
		}
		for i, s := range w.inventory {
			if s == nil {
				w.inventory[i] = &invSlot{itemID: itemID, quantity: qty}
				return qty
			}
		}
		return 0
	}
	added := 0
	for i, s := range w.inventory {
		if added == qty {
			break
		}
		if s == nil {
			w.inventory[i] = &invSlot{itemID: itemID, quantity: 1}
			added++
		}
	}
	return added
}

// removeFromInventory removes up to qty units and returns how many were removed
func (w *World) removeFromInventory(itemID, qty int) int {
	removed := 0
	for i, s := range w.inventory {
		if removed == qty {
			break
		}
		if s == nil || s.itemID != itemID {
			continue
		}
		take := min(s.quantity, qty-removed)
		s.quantity -= take
		removed += take
		if s.quantity == 0 {
			w.inventory[i] = nil
		}
	}
	return removed
}

type inventory struct{ w *World }

func (i inventory) Count(ctx context.Context, itemID int) int {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return i.w.countInventory(itemID)
}

func (i inventory) CountByName(ctx context.Context, name string) int {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	id, ok := i.w.byName[name]
	if !ok {
		return 0
	}
	return i.w.countInventory(id)
}

func (i inventory) CountMatching(ctx context.Context, match func(itemID int, name string) bool) int {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	n := 0
	for _, s := range i.w.inventory {
		if s != nil && match(s.itemID, i.w.items[s.itemID].name) {
			n += s.quantity
		}
	}
	return n
}

func (i inventory) FreeSlots(ctx context.Context) int {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return i.w.freeSlots()
}

func (i inventory) ItemInSlot(ctx context.Context, slot int) (int, bool) {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	if slot < 0 || slot >= shared.InventorySize || i.w.inventory[slot] == nil {
		return 0, false
	}
	return i.w.inventory[slot].itemID, true
}

type bank struct{ w *World }

func (b bank) Open(ctx context.Context) error {
	return nil
}

func (b bank) Close(ctx context.Context) error {
	return nil
}

func (b bank) Location() shared.WorldPoint {
	b.w.mu.Lock()
	defer b.w.mu.Unlock()
	return b.w.bankLocation
}

func (b bank) CountByName(ctx context.Context, name string) int {
	b.w.mu.Lock()
	defer b.w.mu.Unlock()
	return b.w.bank[name]
}

func (b bank) Deposit(ctx context.Context, name string, amount int) error {
	b.w.mu.Lock()
	defer b.w.mu.Unlock()
	id, ok := b.w.byName[name]
	if !ok {
		return fmt.Errorf("unknown item %q", name)
	}
	removed := b.w.removeFromInventory(id, amount)
	b.w.bank[name] += removed
	return nil
}

// Withdraw takes as many units as fit in the inventory
func (b bank) Withdraw(ctx context.Context, name string, amount int) error {
	b.w.mu.Lock()
	defer b.w.mu.Unlock()
	id, ok := b.w.byName[name]
	if !ok {
		return fmt.Errorf("unknown item %q", name)
	}
	if b.w.bank[name] < amount {
		return fmt.Errorf("bank holds %d %s, wanted %d", b.w.bank[name], name, amount)
	}
	added := b.w.addToInventory(id, amount)
	b.w.bank[name] -= added
	if added == 0 {
		return fmt.Errorf("inventory full")
	}
	return nil
}

type equipment struct{ w *World }

func (e equipment) ItemInSlot(ctx context.Context, slot shared.EquipmentSlot) (int, bool) {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	id, ok := e.w.equipment[slot]
	return id, ok
}

// Equip moves one unit from the inventory into its slot, returning the
// previously worn item to the inventory
func (e equipment) Equip(ctx context.Context, itemID int) error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	info, ok := e.w.items[itemID]
	if !ok || !info.slot.IsSet() {
		return fmt.Errorf("item %d cannot be worn", itemID)
	}
	if e.w.removeFromInventory(itemID, 1) == 0 {
		return fmt.Errorf("item %d not carried", itemID)
	}
	if prev, worn := e.w.equipment[info.slot]; worn {
		e.w.addToInventory(prev, 1)
	}
	e.w.equipment[info.slot] = itemID
	return nil
}
