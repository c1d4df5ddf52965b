package shop

import (
	"fmt"

	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// MarketKind distinguishes the two market protocols
type MarketKind string

const (
	// MarketKindExchange is an order-book market: offers are posted into
	// slots and matched asynchronously
	MarketKindExchange MarketKind = "EXCHANGE"

	// MarketKindShop is a direct-stock market with a visible per-item stock
	// counter, traded synchronously while the interface is open
	MarketKindShop MarketKind = "SHOP"
)

// ParseMarketKind converts a string into a MarketKind
func ParseMarketKind(s string) (MarketKind, error) {
	switch MarketKind(s) {
	case MarketKindExchange, MarketKindShop:
		return MarketKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMarketKind, s)
}

// Operation is the direction of a market transaction
type Operation string

const (
	OperationBuy  Operation = "BUY"
	OperationSell Operation = "SELL"
)

// ParseOperation converts a string into an Operation
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OperationBuy, OperationSell:
		return Operation(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOperation, s)
}

// Source identifies where an item is traded. Two items share a shop only
// if their sources are equal.
type Source struct {
	Name     string            `yaml:"name"`
	NPC      string            `yaml:"npc"`
	Location shared.WorldPoint `yaml:"location"`
	Kind     MarketKind        `yaml:"kind"`
}

// Equals compares two sources field by field
func (s Source) Equals(other Source) bool {
	return s.Name == other.Name &&
		s.NPC == other.NPC &&
		s.Location == other.Location &&
		s.Kind == other.Kind
}

func (s Source) String() string {
	if s.NPC == "" {
		return fmt.Sprintf("%s[%s]@%s", s.Name, s.Kind, s.Location)
	}
	return fmt.Sprintf("%s/%s[%s]@%s", s.Name, s.NPC, s.Kind, s.Location)
}

// Item describes a tradeable item and the market it is sourced from
type Item struct {
	ID        int
	Name      string
	Stackable bool
	Tradeable bool
	Source    Source
}

// NewItem creates an item with validation
func NewItem(id int, name string, stackable, tradeable bool, source Source) (Item, error) {
	if id <= 0 || name == "" {
		return Item{}, fmt.Errorf("%w: id=%d name=%q", ErrInvalidItem, id, name)
	}
	if _, err := ParseMarketKind(string(source.Kind)); err != nil {
		return Item{}, err
	}
	return Item{
		ID:        id,
		Name:      name,
		Stackable: stackable,
		Tradeable: tradeable,
		Source:    source,
	}, nil
}

func (i Item) String() string {
	return fmt.Sprintf("%s(%d)", i.Name, i.ID)
}
