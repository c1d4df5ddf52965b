package shop

import (
	"time"

	"github.com/google/uuid"
)

// TradeRecord is an immutable record of one completed market transaction batch
type TradeRecord struct {
	ID             string
	SessionID      string
	RequirementKey string
	ItemID         int
	ItemName       string
	Operation      Operation
	MarketKind     MarketKind
	Quantity       int
	Price          int
	World          int
	RecordedAt     time.Time
}

// NewTradeRecord creates a record with a generated ID
func NewTradeRecord(
	sessionID string,
	requirementKey string,
	item Item,
	op Operation,
	quantity int,
	price int,
	world int,
	recordedAt time.Time,
) TradeRecord {
	return TradeRecord{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		RequirementKey: requirementKey,
		ItemID:         item.ID,
		ItemName:       item.Name,
		Operation:      op,
		MarketKind:     item.Source.Kind,
		Quantity:       quantity,
		Price:          price,
		World:          world,
		RecordedAt:     recordedAt,
	}
}

// Value returns the total coin value of the batch
func (r TradeRecord) Value() int {
	return r.Quantity * r.Price
}
