package protocol

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/core/syncerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingArchiver struct {
	mu     sync.Mutex
	kinds  []string
	bodies [][]byte
}

func (a *recordingArchiver) ArchivePayload(ctx context.Context, kind string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kinds = append(a.kinds, kind)
	a.bodies = append(a.bodies, body)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, archiver PayloadArchiver) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/", ItemTimeout: time.Second}, archiver, zap.NewNop())
	require.NoError(t, err)
	return client
}

const validPlan = `{
  "summary": {"message": "ok", "serverGames": 4},
  "downloadIds": ["easy-5b1f3c2a-8d4e-4f6a-9b0c-1d2e3f4a5b6c"],
  "uploadIds": ["5b1f3c2a-8d4e-4f6a-9b0c-1d2e3f4a5b6d"],
  "conflicts": [{"id": "hard-5b1f3c2a-8d4e-4f6a-9b0c-1d2e3f4a5b6e", "reason": "both modified", "localTimestamp": "2025-06-01T12:00:00", "serverTimestamp": "2025-06-01T12:05:00.123Z"}],
  "deleteLocalIds": []
}`

func TestRequestPlan_Success(t *testing.T) {
	var got reconcile.PlanRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/games/reconcile", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, validPlan)
	}, nil)

	since := int64(1748779200)
	plan, err := client.RequestPlan(context.Background(), "token-1", reconcile.PlanRequest{
		Type:           reconcile.RequestIncrementalEnhanced,
		UserID:         "user-1",
		SinceTimestamp: &since,
		LocalSummary:   &reconcile.LocalGamesSummary{TotalGames: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, reconcile.RequestIncrementalEnhanced, got.Type)
	assert.Equal(t, "user-1", got.UserID)
	require.NotNil(t, got.SinceTimestamp)
	assert.Equal(t, since, *got.SinceTimestamp)

	assert.Equal(t, 4, plan.Summary.ServerGames)
	assert.Len(t, plan.DownloadIDs, 1)
	assert.Len(t, plan.UploadIDs, 1)
	require.Len(t, plan.Conflicts, 1)
	assert.Equal(t, "both modified", plan.Conflicts[0].Reason)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), plan.Conflicts[0].LocalTimestamp.Time)
	assert.Equal(t, 3, plan.NetworkOperations())
}

func TestRequestPlan_FullRequestOmitsIncrementalFields(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, `{"downloadIds":[],"uploadIds":[],"conflicts":[]}`)
	}, nil)

	_, err := client.RequestPlan(context.Background(), "token", reconcile.PlanRequest{
		Type:         reconcile.RequestFull,
		UserID:       "user-1",
		LocalSummary: &reconcile.LocalGamesSummary{GameSummaries: []reconcile.GameSummary{}},
	})

	require.NoError(t, err)
	assert.Equal(t, "full", raw["type"])
	assert.Contains(t, raw, "localSummary")
	assert.NotContains(t, raw, "sinceTimestamp")
	assert.NotContains(t, raw, "localChanges")
}

func TestRequestPlan_EmptyTokenSendsNothing(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, nil)

	_, err := client.RequestPlan(context.Background(), "", reconcile.PlanRequest{Type: reconcile.RequestFull})

	assert.True(t, syncerr.IsKind(err, syncerr.AuthenticationRequired))
	assert.False(t, called)
}

func TestRequestPlan_ServerRejected(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"MessageField", http.StatusBadRequest, `{"message":"bad since timestamp"}`, "bad since timestamp"},
		{"ErrorField", http.StatusUnauthorized, `{"error":"token expired"}`, "token expired"},
		{"NoBody", http.StatusServiceUnavailable, ``, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, nil)

			_, err := client.RequestPlan(context.Background(), "token", reconcile.PlanRequest{Type: reconcile.RequestFull})

			var serr *syncerr.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, syncerr.ServerRejected, serr.Kind)
			assert.Equal(t, tt.status, serr.Status)
			assert.Equal(t, tt.wantMessage, serr.Message)
		})
	}
}

func TestRequestPlan_DecodeFailed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"MalformedJSON", `{"downloadIds": [`},
		{"MissingField", `{"downloadIds":[],"conflicts":[]}`},
		{"WrongType", `{"downloadIds":"all","uploadIds":[],"conflicts":[]}`},
		{"ConflictWithoutID", `{"downloadIds":[],"uploadIds":[],"conflicts":[{"reason":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archiver := &recordingArchiver{}
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}, archiver)

			_, err := client.RequestPlan(context.Background(), "token", reconcile.PlanRequest{Type: reconcile.RequestFull})

			assert.True(t, syncerr.IsKind(err, syncerr.DecodeFailed), "got %v", err)
			require.Len(t, archiver.bodies, 1)
			assert.Equal(t, opRequestPlan, archiver.kinds[0])
			assert.Equal(t, tt.body, string(archiver.bodies[0]))
		})
	}
}

func TestRequestPlan_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, PlanTimeout: 50 * time.Millisecond}, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = client.RequestPlan(context.Background(), "token", reconcile.PlanRequest{Type: reconcile.RequestFull})

	assert.True(t, syncerr.IsKind(err, syncerr.Transport), "got %v", err)
}

func TestRequestPlan_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(Config{BaseURL: url}, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = client.RequestPlan(context.Background(), "token", reconcile.PlanRequest{Type: reconcile.RequestFull})

	assert.True(t, syncerr.IsKind(err, syncerr.Transport))
}

func TestFetchGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/games/easy-abc":
			_, _ = io.WriteString(w, `{"gameId":"easy-abc"}`)
		case "/api/games/broken":
			_, _ = io.WriteString(w, `{"gameId":`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"game not found"}`)
		}
	}, nil)

	payload, err := client.FetchGame(context.Background(), "token", "easy-abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"gameId":"easy-abc"}`, string(payload))

	_, err = client.FetchGame(context.Background(), "token", "broken")
	assert.True(t, syncerr.IsKind(err, syncerr.DecodeFailed))

	_, err = client.FetchGame(context.Background(), "token", "missing")
	var serr *syncerr.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, "game not found", serr.Message)
	assert.Equal(t, "missing", serr.ID)
}

func TestUploadGame(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/games", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"gameId":"g-1"}`, string(body))
			w.WriteHeader(status)
		}, nil)

		err := client.UploadGame(context.Background(), "token", "g-1", json.RawMessage(`{"gameId":"g-1"}`))
		assert.NoError(t, err, "status %d", status)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"stale"}`)
	}, nil)
	err := client.UploadGame(context.Background(), "token", "g-1", json.RawMessage(`{}`))
	assert.True(t, syncerr.IsKind(err, syncerr.ServerRejected))

	err = client.UploadGame(context.Background(), "", "g-1", json.RawMessage(`{}`))
	assert.True(t, syncerr.IsKind(err, syncerr.AuthenticationRequired))
}
