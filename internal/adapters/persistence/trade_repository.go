package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// TradeFilter narrows FindRecent results. Zero values match everything.
type TradeFilter struct {
	SessionID      string
	RequirementKey string
	Limit          int
}

// GormTradeRepository implements trade record persistence using GORM
type GormTradeRepository struct {
	db *gorm.DB
}

var _ fulfillment.TradeRecorder = (*GormTradeRepository)(nil)

// NewGormTradeRepository creates a new GORM trade repository
func NewGormTradeRepository(db *gorm.DB) *GormTradeRepository {
	return &GormTradeRepository{db: db}
}

// Record persists a completed transaction batch
func (r *GormTradeRepository) Record(ctx context.Context, record shop.TradeRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	model := TradeRecordModel{
		ID:             record.ID,
		SessionID:      record.SessionID,
		RequirementKey: record.RequirementKey,
		ItemID:         record.ItemID,
		ItemName:       record.ItemName,
		Operation:      string(record.Operation),
		MarketKind:     string(record.MarketKind),
		Quantity:       record.Quantity,
		Price:          record.Price,
		World:          record.World,
		RecordedAt:     record.RecordedAt,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to record trade %s: %w", record.ID, err)
	}
	return nil
}

// FindRecent returns the newest trades matching filter
func (r *GormTradeRepository) FindRecent(ctx context.Context, filter TradeFilter) ([]shop.TradeRecord, error) {
	query := r.db.WithContext(ctx).Model(&TradeRecordModel{})
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.RequirementKey != "" {
		query = query.Where("requirement_key = ?", filter.RequirementKey)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []TradeRecordModel
	if err := query.Order("recorded_at DESC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find trades: %w", err)
	}

	records := make([]shop.TradeRecord, 0, len(models))
	for _, m := range models {
		records = append(records, shop.TradeRecord{
			ID:             m.ID,
			SessionID:      m.SessionID,
			RequirementKey: m.RequirementKey,
			ItemID:         m.ItemID,
			ItemName:       m.ItemName,
			Operation:      shop.Operation(m.Operation),
			MarketKind:     shop.MarketKind(m.MarketKind),
			Quantity:       m.Quantity,
			Price:          m.Price,
			World:          m.World,
			RecordedAt:     m.RecordedAt,
		})
	}
	return records, nil
}
