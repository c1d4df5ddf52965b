package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// LedgerSummary describes the persisted ledger of one requirement
type LedgerSummary struct {
	RequirementKey string
	Entries        int
	Remaining      int
	LastSavedAt    time.Time
}

// GormOfferLedgerRepository persists offer recovery ledgers so preempted
// offers survive a restart
type GormOfferLedgerRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

var _ fulfillment.LedgerRepository = (*GormOfferLedgerRepository)(nil)

// NewGormOfferLedgerRepository creates a new offer ledger repository
// If clock is nil, uses RealClock (production behavior)
func NewGormOfferLedgerRepository(db *gorm.DB, clock shared.Clock) *GormOfferLedgerRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormOfferLedgerRepository{db: db, clock: clock}
}

// Save replaces the snapshot stored for key with offers
func (r *GormOfferLedgerRepository) Save(ctx context.Context, key string, offers []shop.CancelledOffer) error {
	savedAt := r.clock.Now()
	models := make([]OfferLedgerModel, 0, len(offers))
	for _, o := range offers {
		models = append(models, ledgerToModel(key, o, savedAt))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("requirement_key = ?", key).Delete(&OfferLedgerModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear ledger %s: %w", key, err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to save ledger %s: %w", key, err)
		}
		return nil
	})
}

// Load returns the snapshot stored for key, oldest cancellation first
func (r *GormOfferLedgerRepository) Load(ctx context.Context, key string) ([]shop.CancelledOffer, error) {
	var models []OfferLedgerModel
	result := r.db.WithContext(ctx).
		Where("requirement_key = ?", key).
		Order("cancelled_at ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load ledger %s: %w", key, result.Error)
	}

	offers := make([]shop.CancelledOffer, 0, len(models))
	for _, m := range models {
		offers = append(offers, modelToLedger(m))
	}
	return offers, nil
}

// Delete drops the snapshot stored for key
func (r *GormOfferLedgerRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Where("requirement_key = ?", key).Delete(&OfferLedgerModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ledger %s: %w", key, result.Error)
	}
	return nil
}

// List summarises every stored ledger, ordered by requirement key
func (r *GormOfferLedgerRepository) List(ctx context.Context) ([]LedgerSummary, error) {
	var models []OfferLedgerModel
	result := r.db.WithContext(ctx).Order("requirement_key ASC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", result.Error)
	}

	var summaries []LedgerSummary
	for _, m := range models {
		n := len(summaries)
		if n == 0 || summaries[n-1].RequirementKey != m.RequirementKey {
			summaries = append(summaries, LedgerSummary{RequirementKey: m.RequirementKey})
			n++
		}
		s := &summaries[n-1]
		s.Entries++
		s.Remaining += m.RemainingQuantity
		if m.SavedAt.After(s.LastSavedAt) {
			s.LastSavedAt = m.SavedAt
		}
	}
	return summaries, nil
}

func ledgerToModel(key string, o shop.CancelledOffer, savedAt time.Time) OfferLedgerModel {
	return OfferLedgerModel{
		ID:                o.ID,
		RequirementKey:    key,
		ItemID:            o.ItemID,
		ItemName:          o.ItemName,
		Operation:         string(o.Operation),
		TotalQuantity:     o.TotalQuantity,
		RemainingQuantity: o.RemainingQuantity,
		Price:             o.Price,
		OriginalSlot:      o.OriginalSlot,
		CancelledAt:       o.CancelledAt,
		SavedAt:           savedAt,
	}
}

func modelToLedger(m OfferLedgerModel) shop.CancelledOffer {
	return shop.CancelledOffer{
		ID:                m.ID,
		ItemID:            m.ItemID,
		ItemName:          m.ItemName,
		Operation:         shop.Operation(m.Operation),
		TotalQuantity:     m.TotalQuantity,
		RemainingQuantity: m.RemainingQuantity,
		Price:             m.Price,
		OriginalSlot:      m.OriginalSlot,
		CancelledAt:       m.CancelledAt,
	}
}
