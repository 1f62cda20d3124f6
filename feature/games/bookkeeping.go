package games

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/core/utils"
	"cryptogram-sync/feature/games/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bookkeeping keys in the sync_settings table.
const (
	keyLastSyncAttempt    = "last_sync_attempt"
	keyLastSuccessfulSync = "last_successful_sync"
	keyLastFullSync       = "last_full_sync"
	keyLaunchCount        = "launch_count"
)

// BookkeepingStore persists reconcile.Bookkeeping as key/value rows.
type BookkeepingStore struct {
	db *gorm.DB
}

var _ reconcile.BookkeepingStore = (*BookkeepingStore)(nil)

// NewBookkeepingStore creates a bookkeeping store on db.
func NewBookkeepingStore(db *gorm.DB) *BookkeepingStore {
	return &BookkeepingStore{db: db}
}

// LoadBookkeeping reads every bookkeeping key. Missing keys keep their zero value.
func (s *BookkeepingStore) LoadBookkeeping(ctx context.Context) (reconcile.Bookkeeping, error) {
	var rows []models.SyncSetting
	keys := []string{keyLastSyncAttempt, keyLastSuccessfulSync, keyLastFullSync, keyLaunchCount}
	if err := s.db.WithContext(ctx).Where("setting_key IN ?", keys).Find(&rows).Error; err != nil {
		return reconcile.Bookkeeping{}, fmt.Errorf("failed to load bookkeeping: %w", err)
	}

	var bk reconcile.Bookkeeping
	for _, row := range rows {
		switch row.Key {
		case keyLastSyncAttempt:
			bk.LastSyncAttempt = utils.ToTime(row.Value)
		case keyLastSuccessfulSync:
			bk.LastSuccessfulSync = utils.ToTime(row.Value)
		case keyLastFullSync:
			bk.LastFullSync = utils.ToTime(row.Value)
		case keyLaunchCount:
			bk.LaunchCount = utils.ToInt(row.Value)
		}
	}
	return bk, nil
}

// SaveBookkeeping writes every bookkeeping key in one transaction.
func (s *BookkeepingStore) SaveBookkeeping(ctx context.Context, bk reconcile.Bookkeeping) error {
	now := time.Now().UTC()
	rows := []models.SyncSetting{
		{Key: keyLastSyncAttempt, Value: utils.ToString(bk.LastSyncAttempt), UpdatedAt: now},
		{Key: keyLastSuccessfulSync, Value: utils.ToString(bk.LastSuccessfulSync), UpdatedAt: now},
		{Key: keyLastFullSync, Value: utils.ToString(bk.LastFullSync), UpdatedAt: now},
		{Key: keyLaunchCount, Value: strconv.Itoa(bk.LaunchCount), UpdatedAt: now},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save bookkeeping: %w", err)
	}
	return nil
}
