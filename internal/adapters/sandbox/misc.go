package sandbox

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/requisition-go/internal/domain/ports"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

type movement struct{ w *World }

// WalkTo teleports unless the target was seeded as unreachable
func (m movement) WalkTo(ctx context.Context, target shared.WorldPoint, tolerance int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	if m.w.unreachable[target] {
		return false, nil
	}
	m.w.position = target
	return true, nil
}

func (m movement) IsInArea(ctx context.Context, target shared.WorldPoint, radius int) bool {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	return m.w.position.Within(target, radius)
}

func (m movement) Position(ctx context.Context) shared.WorldPoint {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	return m.w.position
}

type worldSelector struct{ w *World }

func (s worldSelector) Current(ctx context.Context) int {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	return s.w.current
}

// Next proposes the following world in list order for the sequential
// strategy, or the least populated one for the best strategy
func (s worldSelector) Next(ctx context.Context, strategy ports.HopStrategy, excluded map[int]bool) (int, bool) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()

	var candidates []int
	start := 0
	for i, id := range s.w.worlds {
		if id == s.w.current {
			start = i + 1
		}
	}
	for i := 0; i < len(s.w.worlds); i++ {
		id := s.w.worlds[(start+i)%len(s.w.worlds)]
		if id == s.w.current || excluded[id] {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	if strategy == ports.HopStrategyBest {
		sort.SliceStable(candidates, func(i, j int) bool {
			return s.w.population[candidates[i]] < s.w.population[candidates[j]]
		})
	}
	return candidates[0], true
}

func (s worldSelector) Hop(ctx context.Context, world int) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if s.w.refused[world] {
		return fmt.Errorf("world %d refused the connection", world)
	}
	s.w.current = world
	s.w.openShop = ""
	return nil
}

// RefuseWorld makes hops to world fail
func (w *World) RefuseWorld(world int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refused[world] = true
}

type spellbook struct{ w *World }

func (s spellbook) Active(ctx context.Context) string {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	return s.w.spellbook
}

func (s spellbook) Switch(ctx context.Context, book string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.spellbook = book
	return nil
}

type runePouch struct{ w *World }

func (r runePouch) Count(ctx context.Context, runeID int) int {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	return r.w.runePouch[runeID]
}

// Fill moves runes from the inventory, then the bank, into the pouch
func (r runePouch) Fill(ctx context.Context, runeID, amount int) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	moved := r.w.removeFromInventory(runeID, amount)
	if moved < amount {
		name := r.w.items[runeID].name
		take := min(amount-moved, r.w.bank[name])
		r.w.bank[name] -= take
		moved += take
	}
	r.w.runePouch[runeID] += moved
	if moved < amount {
		return fmt.Errorf("only %d of %d runes available", moved, amount)
	}
	return nil
}

type looter struct{ w *World }

func (l looter) Loot(ctx context.Context, itemIDs []int, radius int) (int, error) {
	l.w.mu.Lock()
	defer l.w.mu.Unlock()
	taken := 0
	for _, id := range itemIDs {
		n := l.w.ground[id]
		if n == 0 {
			continue
		}
		added := l.w.addToInventory(id, n)
		l.w.ground[id] -= added
		taken += added
	}
	return taken, nil
}

// Summary is a read-only dump of the world used by the CLI
type Summary struct {
	World     int
	Position  shared.WorldPoint
	Spellbook string
	Inventory map[string]int
	Bank      map[string]int
	Equipment map[shared.EquipmentSlot]string
}

// Summarize returns the current state of the world
func (w *World) Summarize() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Summary{
		World:     w.current,
		Position:  w.position,
		Spellbook: w.spellbook,
		Inventory: make(map[string]int),
		Bank:      copyStock(w.bank),
		Equipment: make(map[shared.EquipmentSlot]string),
	}
	for _, slot := range w.inventory {
		if slot != nil {
			s.Inventory[w.items[slot.itemID].name] += slot.quantity
		}
	}
	for slot, id := range w.equipment {
		s.Equipment[slot] = w.items[id].name
	}
	return s
}
