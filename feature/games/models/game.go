package models

import (
	"time"

	"cryptogram-sync/core/gameid"

	"github.com/google/uuid"
)

// GameRecord is a cryptogram game in the local store.
type GameRecord struct {
	// ID is the canonical 36-character UUID; the variant lives in separate columns.
	ID string `gorm:"column:id;primaryKey;size:36"`

	OwnerID string `gorm:"column:owner_id;size:64;index:idx_owner_updated,priority:1"`

	// IDKind, IDPrefix and DailyDate hold the identifier variant exactly as it was decoded,
	// so ExternalID reproduces the identifier the server knows. Set them with SetVariant.
	IDKind   gameid.Kind `gorm:"column:id_kind"`
	IDPrefix string      `gorm:"column:id_prefix;size:32"`
	// DailyDate uses gameid.DateLayout and is only set for daily identifiers.
	DailyDate string `gorm:"column:daily_date;size:10"`

	// Difficulty is display data from the payload and never changes the identifier.
	Difficulty string `gorm:"column:difficulty;size:16"`
	IsHardcore bool   `gorm:"column:is_hardcore"`
	IsDaily    bool   `gorm:"column:is_daily"`

	PuzzleText   string `gorm:"column:puzzle_text;type:text"`
	SolutionText string `gorm:"column:solution_text;type:text"`
	DisplayText  string `gorm:"column:display_text;type:text"`

	LetterMapping   Mapping `gorm:"column:letter_mapping;type:text"`
	SolutionMapping Mapping `gorm:"column:solution_mapping;type:text"`
	GuessedMapping  Mapping `gorm:"column:guessed_mapping;type:text"`

	Mistakes    int  `gorm:"column:mistakes"`
	MaxMistakes int  `gorm:"column:max_mistakes"`
	HasWon      bool `gorm:"column:has_won"`
	HasLost     bool `gorm:"column:has_lost"`

	// Score and TimeTaken (seconds) are only set for terminal games.
	Score     *int `gorm:"column:score"`
	TimeTaken *int `gorm:"column:time_taken"`

	StartTime      time.Time `gorm:"column:start_time"`
	LastUpdateTime time.Time `gorm:"column:last_update_time;index:idx_owner_updated,priority:2"`
}

// TableName overrides the table name.
func (GameRecord) TableName() string {
	return "game_records"
}

// IsTerminal reports whether the game was won or lost.
func (g *GameRecord) IsTerminal() bool {
	return g.HasWon || g.HasLost
}

// SetVariant stores the identifier variant and the flags derived from it.
func (g *GameRecord) SetVariant(v gameid.Variant) {
	g.IDKind = v.Kind
	g.IDPrefix = v.Difficulty
	g.DailyDate = ""
	if v.IsDaily() {
		g.DailyDate = v.Date
		g.IsDaily = true
	}
	g.IsHardcore = v.IsHardcore()
}

// Variant returns the stored identifier variant.
func (g *GameRecord) Variant() gameid.Variant {
	switch g.IDKind {
	case gameid.KindBare:
		return gameid.Bare()
	case gameid.KindDaily:
		return gameid.Variant{Kind: gameid.KindDaily, Difficulty: g.IDPrefix, Date: g.DailyDate}
	default:
		return gameid.Variant{Kind: g.IDKind, Difficulty: g.IDPrefix}
	}
}

// ExternalID returns the identifier used on the wire.
func (g *GameRecord) ExternalID() string {
	id, err := uuid.Parse(g.ID)
	if err != nil {
		return g.ID
	}
	return gameid.Encode(id, g.Variant())
}

// UserLink records that a user owns games in the local store.
type UserLink struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:64"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (UserLink) TableName() string {
	return "user_links"
}

// SyncSetting is a key/value row holding sync bookkeeping.
type SyncSetting struct {
	Key       string    `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string    `gorm:"column:setting_value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (SyncSetting) TableName() string {
	return "sync_settings"
}
