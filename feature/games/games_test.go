package games

import (
	"context"
	"testing"
	"time"

	"cryptogram-sync/core/database"
	"cryptogram-sync/core/gameid"
	"cryptogram-sync/feature/games/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testOwner = "user-1"

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(setupDB(t))
}

// wonGame returns a valid terminal game started offset after baseTime and finished 90s later.
func wonGame(id string, offset time.Duration) *models.GameRecord {
	start := baseTime.Add(offset)
	return &models.GameRecord{
		ID:              id,
		OwnerID:         testOwner,
		IDKind:          gameid.KindPlain,
		IDPrefix:        "medium",
		Difficulty:      "medium",
		PuzzleText:      "XLI",
		SolutionText:    "THE",
		DisplayText:     "THE",
		LetterMapping:   models.Mapping{"T": "X", "H": "L", "E": "I"},
		SolutionMapping: models.Mapping{"X": "T", "L": "H", "I": "E"},
		GuessedMapping:  models.Mapping{"X": "T", "L": "H", "I": "E"},
		Mistakes:        2,
		MaxMistakes:     5,
		HasWon:          true,
		Score:           intPtr(300),
		TimeTaken:       intPtr(90),
		StartTime:       start,
		LastUpdateTime:  start.Add(90 * time.Second),
	}
}

// openGame returns a valid in-progress game.
func openGame(id string, offset time.Duration) *models.GameRecord {
	g := wonGame(id, offset)
	g.HasWon = false
	g.Score = nil
	g.TimeTaken = nil
	g.GuessedMapping = models.Mapping{"X": "T"}
	g.DisplayText = "T__"
	return g
}

func seed(t *testing.T, s *Store, games ...*models.GameRecord) {
	t.Helper()
	for _, g := range games {
		require.NoError(t, s.Upsert(context.Background(), g))
	}
}
