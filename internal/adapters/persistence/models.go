package persistence

import (
	"time"
)

// OfferLedgerModel represents the offer_ledger_entries table.
// One row per preempted offer still waiting to be reissued.
type OfferLedgerModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	RequirementKey    string    `gorm:"column:requirement_key;index;not null"`
	ItemID            int       `gorm:"column:item_id;not null"`
	ItemName          string    `gorm:"column:item_name;not null"`
	Operation         string    `gorm:"column:operation;not null"`
	TotalQuantity     int       `gorm:"column:total_quantity;not null"`
	RemainingQuantity int       `gorm:"column:remaining_quantity;not null"`
	Price             int       `gorm:"column:price;not null"`
	OriginalSlot      int       `gorm:"column:original_slot;not null;default:0"`
	CancelledAt       time.Time `gorm:"column:cancelled_at;not null"`
	SavedAt           time.Time `gorm:"column:saved_at;not null"`
}

func (OfferLedgerModel) TableName() string {
	return "offer_ledger_entries"
}

// TradeRecordModel represents the trade_records table
type TradeRecordModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	SessionID      string    `gorm:"column:session_id;index"`
	RequirementKey string    `gorm:"column:requirement_key;index;not null"`
	ItemID         int       `gorm:"column:item_id;not null"`
	ItemName       string    `gorm:"column:item_name;not null"`
	Operation      string    `gorm:"column:operation;not null"`
	MarketKind     string    `gorm:"column:market_kind;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	Price          int       `gorm:"column:price;not null;default:0"`
	World          int       `gorm:"column:world;not null;default:0"`
	RecordedAt     time.Time `gorm:"column:recorded_at;index;not null"`
}

func (TradeRecordModel) TableName() string {
	return "trade_records"
}
