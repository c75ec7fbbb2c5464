package repository

import (
	"context"

	"github.com/Elite-tch/privacycart/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository interface {
	Seed(ctx context.Context) error
	Create(ctx context.Context, receipt *model.Receipt) error
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.Receipt, error)
}

type receiptRepoImpl struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepoImpl{
		db: db,
	}
}

// Seed stores the shared history from the vault seed.
func (r *receiptRepoImpl) Seed(ctx context.Context) error {
	_, history, err := ParseVaultSeed(vaultSeed)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&history).Error
}

func (r *receiptRepoImpl) Create(ctx context.Context, receipt *model.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// ListRecent returns the session's receipts and the seeded history, newest first.
func (r *receiptRepoImpl) ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.Receipt, error) {
	var receipts []*model.Receipt
	err := r.db.WithContext(ctx).
		Where("session_id IN ?", []string{sessionID, model.SeedSessionID}).
		Order("created_at DESC").
		Limit(limit).
		Find(&receipts).Error

	if err != nil {
		return nil, err
	}

	return receipts, nil
}
