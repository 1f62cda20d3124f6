package games

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"cryptogram-sync/core/isotime"
	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/feature/games/models"
)

// Checksum fingerprints the fields that matter for reconciliation:
// the first 16 hex characters of SHA-256 over "id|lastModifiedUnix|hasWon|hasLost|score".
func Checksum(g *models.GameRecord) string {
	score := ""
	if g.Score != nil {
		score = strconv.Itoa(*g.Score)
	}
	input := fmt.Sprintf("%s|%d|%t|%t|%s", g.ExternalID(), g.LastUpdateTime.Unix(), g.HasWon, g.HasLost, score)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}

// BuildSummary produces the summary of every game owned by ownerID.
func BuildSummary(ctx context.Context, store *Store, ownerID string) (*reconcile.LocalGamesSummary, error) {
	records, err := store.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &reconcile.LocalGamesSummary{
		TotalGames:    len(records),
		GameSummaries: make([]reconcile.GameSummary, 0, len(records)),
	}

	var latest time.Time
	for i := range records {
		g := &records[i]
		if g.IsTerminal() {
			summary.CompletedGames++
		}
		if g.LastUpdateTime.After(latest) {
			latest = g.LastUpdateTime
		}
		entry := reconcile.GameSummary{
			ID:           g.ExternalID(),
			LastModified: isotime.New(g.LastUpdateTime),
			IsCompleted:  g.IsTerminal(),
			Checksum:     Checksum(g),
		}
		if g.IsTerminal() {
			entry.Score = g.Score
		}
		summary.GameSummaries = append(summary.GameSummaries, entry)
	}
	summary.MostRecentModification = isotime.Ptr(latest)

	return summary, nil
}

// ComputeChanges lists games modified strictly after since. A game counts as created when it
// started after since. Only terminal games carry their payload.
func ComputeChanges(ctx context.Context, store *Store, ownerID string, since time.Time) ([]reconcile.GameChange, error) {
	records, err := store.FetchModifiedSince(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	changes := make([]reconcile.GameChange, 0, len(records))
	for i := range records {
		g := &records[i]
		change := reconcile.GameChange{
			ID:           g.ExternalID(),
			ChangeType:   reconcile.ChangeUpdated,
			LastModified: isotime.New(g.LastUpdateTime),
		}
		if g.StartTime.After(since) {
			change.ChangeType = reconcile.ChangeCreated
		}
		if g.IsTerminal() {
			payload, err := models.MarshalRecord(g)
			if err != nil {
				return nil, err
			}
			change.Payload = payload
		}
		changes = append(changes, change)
	}
	return changes, nil
}
