package sandbox

import (
	"context"
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

type shopPort struct{ w *World }

// stockFor returns the live listing of a shop on the current world,
// copying the base listing the first time a world is visited
func (w *World) stockFor(st *shopState) map[string]int {
	stock, ok := st.perWorld[w.current]
	if !ok {
		stock = copyStock(st.base)
		st.perWorld[w.current] = stock
	}
	return stock
}

func (s shopPort) Open(ctx context.Context, source shop.Source) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	st, ok := s.w.shops[source.Name]
	if !ok {
		return fmt.Errorf("no shop named %q", source.Name)
	}
	if st.openFailures > 0 {
		st.openFailures--
		return fmt.Errorf("%s did not respond", source.Name)
	}
	if !s.w.position.Within(source.Location, 15) {
		return fmt.Errorf("%s is out of reach", source.Name)
	}
	s.w.openShop = source.Name
	return nil
}

func (s shopPort) Close(ctx context.Context) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.openShop = ""
	return nil
}

func (s shopPort) IsOpen(ctx context.Context) bool {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	return s.w.openShop != ""
}

func (s shopPort) open() (*shopState, error) {
	st, ok := s.w.shops[s.w.openShop]
	if !ok {
		return nil, fmt.Errorf("no shop open")
	}
	return st, nil
}

func (s shopPort) Stock(ctx context.Context, itemName string) (int, bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	st, err := s.open()
	if err != nil {
		return 0, false, err
	}
	n, listed := s.w.stockFor(st)[itemName]
	return n, listed, nil
}

// Buy takes as many units as stock and inventory allow
func (s shopPort) Buy(ctx context.Context, itemName string, quantity int) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	st, err := s.open()
	if err != nil {
		return err
	}
	id, ok := s.w.byName[itemName]
	if !ok {
		return fmt.Errorf("unknown item %q", itemName)
	}
	stock := s.w.stockFor(st)
	qty := min(quantity, stock[itemName])
	if qty <= 0 {
		return fmt.Errorf("%s is out of stock", itemName)
	}
	added := s.w.addToInventory(id, qty)
	stock[itemName] -= added
	return nil
}

func (s shopPort) Sell(ctx context.Context, itemName string, quantity int) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	st, err := s.open()
	if err != nil {
		return err
	}
	id, ok := s.w.byName[itemName]
	if !ok {
		return fmt.Errorf("unknown item %q", itemName)
	}
	removed := s.w.removeFromInventory(id, quantity)
	s.w.stockFor(st)[itemName] += removed
	if coins, ok := s.w.byName[coinName]; ok {
		s.w.addToInventory(coins, removed*st.prices[itemName])
	}
	return nil
}

// SetShopStock overrides a shop's stock for one item on one world
func (w *World) SetShopStock(shopName string, world int, itemName string, stock int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.shops[shopName]
	if !ok {
		return
	}
	listing, ok := st.perWorld[world]
	if !ok {
		listing = copyStock(st.base)
		st.perWorld[world] = listing
	}
	listing[itemName] = stock
}

// FailShopOpens makes the next n Open calls on a shop fail
func (w *World) FailShopOpens(shopName string, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.shops[shopName]; ok {
		st.openFailures = n
	}
}
