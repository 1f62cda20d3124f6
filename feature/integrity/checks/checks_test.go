package checks

import (
	"testing"
	"time"

	"cryptogram-sync/core/database"
	"cryptogram-sync/feature/games/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testOwner = "user-1"

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func migrated(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupDB(t)
	require.NoError(t, db.AutoMigrate(&models.GameRecord{}, &models.UserLink{}, &models.SyncSetting{}))
	return db
}

func intPtr(v int) *int { return &v }

func wonGame(id string) *models.GameRecord {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &models.GameRecord{
		ID:              id,
		OwnerID:         testOwner,
		Difficulty:      "easy",
		SolutionMapping: models.Mapping{"X": "T"},
		GuessedMapping:  models.Mapping{"X": "T"},
		MaxMistakes:     5,
		HasWon:          true,
		Score:           intPtr(100),
		TimeTaken:       intPtr(60),
		StartTime:       start,
		LastUpdateTime:  start.Add(time.Minute),
	}
}
