package games

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/feature/games/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	g := wonGame(idA, 0)
	sum := Checksum(g)
	assert.Len(t, sum, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", sum)
	assert.Equal(t, sum, Checksum(wonGame(idA, 0)))

	changed := wonGame(idA, 0)
	changed.Score = intPtr(301)
	assert.NotEqual(t, sum, Checksum(changed))

	moved := wonGame(idA, 0)
	moved.LastUpdateTime = moved.LastUpdateTime.Add(time.Second)
	assert.NotEqual(t, sum, Checksum(moved))

	// Sub-second changes are below the checksum's resolution.
	jitter := wonGame(idA, 0)
	jitter.LastUpdateTime = jitter.LastUpdateTime.Add(200 * time.Millisecond)
	assert.Equal(t, sum, Checksum(jitter))
}

func TestBuildSummary(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seed(t, s, wonGame(idA, 0), openGame(idB, time.Hour))

	summary, err := BuildSummary(ctx, s, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalGames)
	assert.Equal(t, 1, summary.CompletedGames)
	require.NotNil(t, summary.MostRecentModification)
	assert.True(t, summary.MostRecentModification.Equal(baseTime.Add(time.Hour+90*time.Second)))

	require.Len(t, summary.GameSummaries, 2)
	first := summary.GameSummaries[0]
	assert.Equal(t, "medium-"+idA, first.ID)
	assert.True(t, first.IsCompleted)
	require.NotNil(t, first.Score)
	assert.Equal(t, 300, *first.Score)
	assert.Equal(t, Checksum(wonGame(idA, 0)), first.Checksum)

	second := summary.GameSummaries[1]
	assert.False(t, second.IsCompleted)
	assert.Nil(t, second.Score)
}

func TestBuildSummary_Empty(t *testing.T) {
	s := setupStore(t)

	summary, err := BuildSummary(context.Background(), s, testOwner)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalGames)
	assert.Nil(t, summary.MostRecentModification)
	assert.Empty(t, summary.GameSummaries)
}

func TestComputeChanges(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	// Started before the cutoff but finished after it.
	updated := wonGame(idA, 0)
	updated.LastUpdateTime = baseTime.Add(2 * time.Hour)
	// Untouched since the cutoff.
	stale := wonGame(idB, 0)
	seed(t, s, updated, stale, openGame(idC, 90*time.Minute))

	changes, err := ComputeChanges(ctx, s, testOwner, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	byID := map[string]reconcile.GameChange{}
	for _, c := range changes {
		byID[c.ID] = c
	}

	created := byID["medium-"+idC]
	assert.Equal(t, reconcile.ChangeCreated, created.ChangeType)
	assert.Nil(t, created.Payload)

	upd := byID["medium-"+idA]
	assert.Equal(t, reconcile.ChangeUpdated, upd.ChangeType)
	require.NotNil(t, upd.Payload)

	var payload models.GamePayload
	require.NoError(t, json.Unmarshal(upd.Payload, &payload))
	assert.Equal(t, "medium-"+idA, payload.GameID)
	assert.True(t, payload.HasWon)
}
