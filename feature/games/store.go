package games

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptogram-sync/feature/games/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a game is not in the local store.
var ErrNotFound = errors.New("game not found")

// Store is the gorm-backed local game store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// FetchByID returns the game with the canonical id, or ErrNotFound.
func (s *Store) FetchByID(ctx context.Context, id string) (*models.GameRecord, error) {
	var record models.GameRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game %s: %w", id, err)
	}
	return &record, nil
}

// FetchByOwner returns every game owned by ownerID ordered by last update.
func (s *Store) FetchByOwner(ctx context.Context, ownerID string) ([]models.GameRecord, error) {
	var records []models.GameRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("last_update_time ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games for %s: %w", ownerID, err)
	}
	return records, nil
}

// FetchModifiedSince returns games owned by ownerID updated strictly after since.
func (s *Store) FetchModifiedSince(ctx context.Context, ownerID string, since time.Time) ([]models.GameRecord, error) {
	var records []models.GameRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND last_update_time > ?", ownerID, since.UTC()).
		Order("last_update_time ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch modified games for %s: %w", ownerID, err)
	}
	return records, nil
}

// Upsert inserts the record or replaces every column of an existing one.
func (s *Store) Upsert(ctx context.Context, record *models.GameRecord) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", record.ID, err)
	}
	return nil
}

// Delete removes a game. Deleting an absent game is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GameRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	return nil
}

// EnsureUser creates the user link if it does not exist yet.
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	link := models.UserLink{UserID: userID}
	err := s.db.WithContext(ctx).
		Where(models.UserLink{UserID: userID}).
		Attrs(models.UserLink{CreatedAt: time.Now().UTC()}).
		FirstOrCreate(&link).Error
	if err != nil {
		return fmt.Errorf("failed to ensure user %s: %w", userID, err)
	}
	return nil
}

// Count returns the number of games owned by ownerID.
func (s *Store) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.GameRecord{}).Where("owner_id = ?", ownerID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count games for %s: %w", ownerID, err)
	}
	return n, nil
}
