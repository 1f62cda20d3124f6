package models

import (
	"encoding/json"
	"fmt"
	"time"

	"cryptogram-sync/core/gameid"
	"cryptogram-sync/core/isotime"
	"cryptogram-sync/core/syncerr"
)

// GamePayload is the JSON representation of a game exchanged with the sync server.
type GamePayload struct {
	GameID          string       `json:"gameId"`
	PuzzleText      string       `json:"puzzleText"`
	SolutionText    string       `json:"solutionText"`
	DisplayText     string       `json:"displayText"`
	LetterMapping   Mapping      `json:"letterMapping"`
	SolutionMapping Mapping      `json:"solutionMapping"`
	GuessedMapping  Mapping      `json:"guessedMapping"`
	Mistakes        int          `json:"mistakes"`
	MaxMistakes     int          `json:"maxMistakes"`
	HasWon          bool         `json:"hasWon"`
	HasLost         bool         `json:"hasLost"`
	Difficulty      string       `json:"difficulty,omitempty"`
	IsDaily         bool         `json:"isDaily"`
	Score           *int         `json:"score,omitempty"`
	TimeTaken       *int         `json:"timeTaken,omitempty"`
	StartTime       isotime.Time `json:"startTime"`
	LastUpdateTime  isotime.Time `json:"lastUpdateTime"`
}

// ToPayload converts a record to its wire form.
func (g *GameRecord) ToPayload() GamePayload {
	return GamePayload{
		GameID:          g.ExternalID(),
		PuzzleText:      g.PuzzleText,
		SolutionText:    g.SolutionText,
		DisplayText:     g.DisplayText,
		LetterMapping:   g.LetterMapping,
		SolutionMapping: g.SolutionMapping,
		GuessedMapping:  g.GuessedMapping,
		Mistakes:        g.Mistakes,
		MaxMistakes:     g.MaxMistakes,
		HasWon:          g.HasWon,
		HasLost:         g.HasLost,
		Difficulty:      g.Difficulty,
		IsDaily:         g.IsDaily,
		Score:           g.Score,
		TimeTaken:       g.TimeTaken,
		StartTime:       isotime.New(g.StartTime),
		LastUpdateTime:  isotime.New(g.LastUpdateTime),
	}
}

// MarshalRecord encodes a record as a wire payload.
func MarshalRecord(g *GameRecord) (json.RawMessage, error) {
	data, err := json.Marshal(g.ToPayload())
	if err != nil {
		return nil, fmt.Errorf("failed to encode game %s: %w", g.ID, err)
	}
	return data, nil
}

// ToRecord converts a payload into a record owned by ownerID.
// The game id must decode; otherwise a syncerr.InvalidIdentifier error is returned.
// The decoded variant is kept as-is; payload difficulty only fills the display column.
func (p GamePayload) ToRecord(ownerID string) (*GameRecord, error) {
	id, variant, err := gameid.Decode(p.GameID)
	if err != nil {
		return nil, err
	}

	difficulty := p.Difficulty
	if difficulty == "" {
		difficulty = variant.Difficulty
	}

	record := &GameRecord{
		ID:              id.String(),
		OwnerID:         ownerID,
		Difficulty:      difficulty,
		IsDaily:         p.IsDaily,
		PuzzleText:      p.PuzzleText,
		SolutionText:    p.SolutionText,
		DisplayText:     p.DisplayText,
		LetterMapping:   orEmpty(p.LetterMapping),
		SolutionMapping: orEmpty(p.SolutionMapping),
		GuessedMapping:  orEmpty(p.GuessedMapping),
		Mistakes:        p.Mistakes,
		MaxMistakes:     p.MaxMistakes,
		HasWon:          p.HasWon,
		HasLost:         p.HasLost,
		Score:           p.Score,
		TimeTaken:       p.TimeTaken,
		StartTime:       truncate(p.StartTime.Time),
		LastUpdateTime:  truncate(p.LastUpdateTime.Time),
	}
	record.SetVariant(variant)
	return record, nil
}

// DecodeRecord decodes and validates a downloaded payload.
// Malformed JSON and invariant violations are syncerr.DecodeFailed errors.
func DecodeRecord(data []byte, ownerID string) (*GameRecord, error) {
	var p GamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, syncerr.New(syncerr.DecodeFailed, "decode_game", "", err)
	}
	record, err := p.ToRecord(ownerID)
	if err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, syncerr.New(syncerr.DecodeFailed, "decode_game", p.GameID, err)
	}
	return record, nil
}

// truncate drops sub-millisecond precision, which the wire format cannot carry.
func truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}

func orEmpty(m Mapping) Mapping {
	if m == nil {
		return Mapping{}
	}
	return m
}
