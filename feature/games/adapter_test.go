package games

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cryptogram-sync/core/gameid"
	"cryptogram-sync/core/syncerr"
	"cryptogram-sync/feature/games/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdapter_NormalizeID(t *testing.T) {
	a := NewAdapter(setupStore(t), zap.NewNop())

	got, err := a.NormalizeID("expert-daily-2025-06-01-" + idA)
	require.NoError(t, err)
	assert.Equal(t, idA, got)

	_, err = a.NormalizeID("not-an-id")
	assert.True(t, syncerr.IsKind(err, syncerr.InvalidIdentifier))
}

func TestAdapter_ApplyDownloadIdempotent(t *testing.T) {
	s := setupStore(t)
	a := NewAdapter(s, zap.NewNop())
	ctx := context.Background()

	payload, err := models.MarshalRecord(wonGame(idA, 0))
	require.NoError(t, err)

	require.NoError(t, a.ApplyDownload(ctx, testOwner, payload))
	first, err := s.FetchByID(ctx, idA)
	require.NoError(t, err)

	require.NoError(t, a.ApplyDownload(ctx, testOwner, payload))
	second, err := s.FetchByID(ctx, idA)
	require.NoError(t, err)

	assert.Equal(t, first.ToPayload(), second.ToPayload())
	n, err := s.Count(ctx, testOwner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var links int64
	require.NoError(t, s.DB().Model(&models.UserLink{}).Count(&links).Error)
	assert.EqualValues(t, 1, links)
}

func TestAdapter_ApplyDownloadRejectsInvalid(t *testing.T) {
	s := setupStore(t)
	a := NewAdapter(s, zap.NewNop())
	ctx := context.Background()

	bad := wonGame(idA, 0)
	bad.HasLost = true
	payload, err := json.Marshal(bad.ToPayload())
	require.NoError(t, err)

	err = a.ApplyDownload(ctx, testOwner, payload)
	assert.True(t, syncerr.IsKind(err, syncerr.DecodeFailed))

	err = a.ApplyDownload(ctx, testOwner, json.RawMessage(`{"gameId":`))
	assert.True(t, syncerr.IsKind(err, syncerr.DecodeFailed))

	_, err = s.FetchByID(ctx, idA)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdapter_LoadUpload(t *testing.T) {
	s := setupStore(t)
	a := NewAdapter(s, zap.NewNop())
	ctx := context.Background()
	seed(t, s, wonGame(idA, 0), openGame(idC, time.Hour))

	payload, err := a.LoadUpload(ctx, idA)
	require.NoError(t, err)
	var p models.GamePayload
	require.NoError(t, json.Unmarshal(payload, &p))
	assert.Equal(t, "medium-"+idA, p.GameID)

	_, err = a.LoadUpload(ctx, idB)
	assert.True(t, syncerr.IsKind(err, syncerr.LocalRecordMissing))

	_, err = a.LoadUpload(ctx, idC)
	assert.True(t, syncerr.IsKind(err, syncerr.LocalRecordMissing))
	assert.Contains(t, err.Error(), "in progress")
}

func TestAdapter_DownloadedIDsSurviveSummary(t *testing.T) {
	s := setupStore(t)
	a := NewAdapter(s, zap.NewNop())
	ctx := context.Background()

	downloads := []struct {
		gameID     string
		difficulty string
	}{
		{"11111111-1111-4111-8111-111111111111", "easy"},
		{"easy-22222222-2222-4222-8222-222222222222", "hard"},
		{"33333333-3333-4333-8333-333333333333", "beginner"},
		{"hard-hardcore-44444444-4444-4444-8444-444444444444", "medium"},
		{"expert-daily-2025-06-01-55555555-5555-4555-8555-555555555555", ""},
	}

	var want []string
	for i, d := range downloads {
		canonical, err := gameid.Canonical(d.gameID)
		require.NoError(t, err)
		p := wonGame(canonical, time.Duration(i)*time.Minute).ToPayload()
		p.GameID = d.gameID
		p.Difficulty = d.difficulty
		data, err := json.Marshal(p)
		require.NoError(t, err)
		require.NoError(t, a.ApplyDownload(ctx, testOwner, data))
		want = append(want, d.gameID)
	}

	summary, err := a.BuildSummary(ctx, testOwner)
	require.NoError(t, err)
	var got []string
	for _, g := range summary.GameSummaries {
		got = append(got, g.ID)
		_, _, err := gameid.Decode(g.ID)
		assert.NoError(t, err, g.ID)
	}
	assert.ElementsMatch(t, want, got)

	for _, d := range downloads {
		canonical, _ := gameid.Canonical(d.gameID)
		payload, err := a.LoadUpload(ctx, canonical)
		require.NoError(t, err)
		var p models.GamePayload
		require.NoError(t, json.Unmarshal(payload, &p))
		assert.Equal(t, d.gameID, p.GameID)
	}
}

func TestAdapter_DeleteLocal(t *testing.T) {
	s := setupStore(t)
	a := NewAdapter(s, zap.NewNop())
	ctx := context.Background()
	seed(t, s, wonGame(idA, 0))

	require.NoError(t, a.DeleteLocal(ctx, idA))
	_, err := s.FetchByID(ctx, idA)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "games", a.Name())
}
