package games

import (
	"fmt"

	"cryptogram-sync/core/database"
	"cryptogram-sync/feature/games/models"

	"gorm.io/gorm"
)

// requiredColumns lists the game_records columns the snapshot and the adapter rely on.
var requiredColumns = []string{
	"id", "owner_id", "id_kind", "id_prefix", "difficulty", "is_hardcore", "is_daily", "daily_date",
	"solution_mapping", "guessed_mapping", "has_won", "has_lost", "score",
	"start_time", "last_update_time",
}

// Migrate creates or updates the local schema and verifies the result.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.GameRecord{}, &models.UserLink{}, &models.SyncSetting{}); err != nil {
		return fmt.Errorf("failed to migrate local store: %w", err)
	}

	missing, err := database.HasColumns(db, models.GameRecord{}.TableName(), requiredColumns...)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %v", models.GameRecord{}.TableName(), missing)
	}
	return nil
}

// Tables returns the names of the tables Migrate manages.
func Tables() []string {
	return []string{
		models.GameRecord{}.TableName(),
		models.UserLink{}.TableName(),
		models.SyncSetting{}.TableName(),
	}
}
