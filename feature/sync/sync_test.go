package sync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"cryptogram-sync/core/auth"
	"cryptogram-sync/core/database"
	"cryptogram-sync/core/gameid"
	"cryptogram-sync/core/protocol"
	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/feature/games"
	"cryptogram-sync/feature/games/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	owner      = "user-1"
	remoteGame = "44444444-4444-4444-8444-444444444444"
	localGame  = "55555555-5555-4555-8555-555555555555"
)

func intPtr(v int) *int { return &v }

func wonGame(id string) *models.GameRecord {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &models.GameRecord{
		ID:              id,
		OwnerID:         owner,
		IDKind:          gameid.KindPlain,
		IDPrefix:        "easy",
		Difficulty:      "easy",
		PuzzleText:      "XLI",
		SolutionText:    "THE",
		DisplayText:     "THE",
		LetterMapping:   models.Mapping{"T": "X", "H": "L", "E": "I"},
		SolutionMapping: models.Mapping{"X": "T", "L": "H", "I": "E"},
		GuessedMapping:  models.Mapping{"X": "T", "L": "H", "I": "E"},
		MaxMistakes:     5,
		HasWon:          true,
		Score:           intPtr(500),
		TimeTaken:       intPtr(60),
		StartTime:       start,
		LastUpdateTime:  start.Add(time.Minute),
	}
}

// fakeServer is a sync server answering with a fixed plan.
type fakeServer struct {
	mu        gosync.Mutex
	plan      string
	planCode  int
	planCalls int
	uploads   []string
	release   chan struct{}
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/games/reconcile":
		s.mu.Lock()
		s.planCalls++
		release := s.release
		s.mu.Unlock()
		if release != nil {
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		if s.planCode != 0 {
			w.WriteHeader(s.planCode)
			_, _ = w.Write([]byte(`{"message":"maintenance"}`))
			return
		}
		_, _ = w.Write([]byte(s.plan))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/games/"):
		payload, _ := models.MarshalRecord(wonGame(remoteGame))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	case r.Method == http.MethodPost && r.URL.Path == "/api/games":
		body, _ := io.ReadAll(r.Body)
		var p models.GamePayload
		_ = json.Unmarshal(body, &p)
		s.mu.Lock()
		s.uploads = append(s.uploads, p.GameID)
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *fakeServer) set(fn func(s *fakeServer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *fakeServer) uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

func (s *fakeServer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planCalls
}

type fixture struct {
	server  *fakeServer
	store   *games.Store
	service *Service
	app     *fiber.App
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	srv := &fakeServer{
		plan: `{"downloadIds":["easy-` + remoteGame + `"],"uploadIds":["easy-` + localGame + `"],"conflicts":[]}`,
	}
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, games.Migrate(db))
	store := games.NewStore(db)
	require.NoError(t, store.Upsert(context.Background(), wonGame(localGame)))

	client, err := protocol.NewClient(protocol.Config{BaseURL: httpSrv.URL, PlanTimeout: 5 * time.Second}, nil, zap.NewNop())
	require.NoError(t, err)

	coord := reconcile.NewCoordinator(reconcile.CoordinatorConfig{
		OwnerID:     owner,
		Adapter:     games.NewAdapter(store, zap.NewNop()),
		Remote:      client,
		Tokens:      auth.NewProvider(auth.Config{AccessToken: token}, zap.NewNop()),
		Bookkeeping: games.NewBookkeepingStore(db),
		Policy:      reconcile.Config{BatchStagger: 0, ItemTimeout: 5 * time.Second},
		Logger:      zap.NewNop(),
	})

	feature := NewFeature(coord, zap.NewNop())
	app := fiber.New()
	require.NoError(t, feature.Load(app))

	return &fixture{server: srv, store: store, service: feature.Service(), app: app}
}

func (f *fixture) post(t *testing.T, path string) (*http.Response, TriggerResponse) {
	t.Helper()
	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, path, nil), 10000)
	require.NoError(t, err)
	var body TriggerResponse
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(data, &body)
	return resp, body
}

func TestHandleTrigger_ManualFullSync(t *testing.T) {
	f := newFixture(t, "token-1")

	resp, body := f.post(t, "/sync/manual")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, reconcile.OutcomeSucceeded, body.Outcome)
	assert.Equal(t, reconcile.SyncFull, body.SyncType)
	assert.Equal(t, "Sync completed: 2 operations", body.Message)
	assert.False(t, body.Shared)

	downloaded, err := f.store.FetchByID(context.Background(), remoteGame)
	require.NoError(t, err)
	assert.Equal(t, owner, downloaded.OwnerID)
	assert.Equal(t, []string{"easy-" + localGame}, f.server.uploaded())

	status, err := f.service.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Bookkeeping.LastSuccessfulSync.IsZero())
	assert.False(t, status.Bookkeeping.LastFullSync.IsZero())
}

func TestHandleTrigger_UnknownTrigger(t *testing.T) {
	f := newFixture(t, "token-1")

	resp, _ := f.post(t, "/sync/whenever")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.server.calls())
}

func TestHandleTrigger_Unauthenticated(t *testing.T) {
	f := newFixture(t, "")

	resp, body := f.post(t, "/sync/manual")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, reconcile.OutcomeUnauthenticated, body.Outcome)
	assert.Equal(t, "Authentication required", body.Message)
	assert.Zero(t, f.server.calls())
}

func TestHandleTrigger_RequestFailed(t *testing.T) {
	f := newFixture(t, "token-1")
	f.server.set(func(s *fakeServer) { s.planCode = http.StatusServiceUnavailable })

	resp, body := f.post(t, "/sync/manual")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, reconcile.OutcomeRequestFailed, body.Outcome)
	assert.Contains(t, body.Error, "maintenance")

	status, err := f.service.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Bookkeeping.LastSyncAttempt.IsZero())
	assert.True(t, status.Bookkeeping.LastSuccessfulSync.IsZero())
}

func TestHandleStatus(t *testing.T) {
	f := newFixture(t, "token-1")
	f.post(t, "/sync/manual")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/sync/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, owner, status["ownerId"])
	assert.Equal(t, false, status["inFlight"])
	last := status["lastResult"].(map[string]any)
	assert.Equal(t, "succeeded", last["outcome"])
}

func TestHandleTrigger_Async(t *testing.T) {
	f := newFixture(t, "token-1")

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/sync/manual?wait=false", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	f.service.Close()
	last := f.service.LastResult()
	require.NotNil(t, last)
	assert.Equal(t, reconcile.OutcomeSucceeded, last.Outcome)
}

func TestService_CollapsesConcurrentBackgroundTriggers(t *testing.T) {
	f := newFixture(t, "token-1")
	release := make(chan struct{})
	f.server.set(func(s *fakeServer) { s.release = release })

	results := make(chan reconcile.Result, 2)
	sharedCount := make(chan bool, 2)
	trigger := func() {
		res, shared := f.service.Trigger(context.Background(), reconcile.TriggerBackground)
		results <- res
		sharedCount <- shared
	}
	go trigger()
	require.Eventually(t, func() bool { return f.server.calls() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, f.service.inFlight.Load())

	go trigger()
	time.Sleep(50 * time.Millisecond)
	close(release)

	first, second := <-results, <-results
	assert.Equal(t, first.CycleID, second.CycleID)
	assert.Equal(t, 1, f.server.calls())
	assert.True(t, <-sharedCount)
	assert.True(t, <-sharedCount)
}

func TestService_ManualRunsAfterInFlightCycle(t *testing.T) {
	f := newFixture(t, "token-1")
	release := make(chan struct{})
	f.server.set(func(s *fakeServer) { s.release = release })

	launch := make(chan reconcile.Result, 1)
	go func() {
		res, _ := f.service.Trigger(context.Background(), reconcile.TriggerAppLaunch)
		launch <- res
	}()
	require.Eventually(t, func() bool { return f.server.calls() == 1 }, 2*time.Second, 5*time.Millisecond)

	manual := make(chan reconcile.Result, 1)
	manualShared := make(chan bool, 1)
	go func() {
		res, shared := f.service.Trigger(context.Background(), reconcile.TriggerManual)
		manual <- res
		manualShared <- shared
	}()

	// The manual cycle waits for the launch cycle instead of joining it.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.server.calls())
	close(release)

	first, second := <-launch, <-manual
	assert.False(t, <-manualShared)
	assert.NotEqual(t, first.CycleID, second.CycleID)
	assert.Equal(t, reconcile.TriggerAppLaunch, first.Trigger)
	assert.Equal(t, reconcile.TriggerManual, second.Trigger)
	assert.Equal(t, reconcile.OutcomeSucceeded, second.Outcome)
	assert.Equal(t, 2, f.server.calls())

	status, err := f.service.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.Bookkeeping.LaunchCount)
}

func TestService_RunBackground(t *testing.T) {
	f := newFixture(t, "token-1")
	ctx, cancel := context.WithCancel(context.Background())

	f.service.RunBackground(ctx, 20*time.Millisecond)
	require.Eventually(t, func() bool { return f.service.LastResult() != nil }, 2*time.Second, 10*time.Millisecond)
	cancel()
	f.service.Close()

	// Without a prior successful sync the first background cycle is upgraded to a full sync.
	assert.Equal(t, reconcile.TriggerBackground, f.service.LastResult().Trigger)
	status, err := f.service.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Bookkeeping.LastFullSync.IsZero())
}

func TestStatusFor(t *testing.T) {
	tests := map[reconcile.Outcome]int{
		reconcile.OutcomeSucceeded:       fiber.StatusOK,
		reconcile.OutcomeNothingToSync:   fiber.StatusOK,
		reconcile.OutcomeSkipped:         fiber.StatusOK,
		reconcile.OutcomePartial:         fiber.StatusMultiStatus,
		reconcile.OutcomeFailed:          fiber.StatusBadGateway,
		reconcile.OutcomeRequestFailed:   fiber.StatusBadGateway,
		reconcile.OutcomeUnauthenticated: fiber.StatusUnauthorized,
		reconcile.OutcomeCancelled:       fiber.StatusServiceUnavailable,
	}
	for outcome, want := range tests {
		assert.Equal(t, want, statusFor(outcome), string(outcome))
	}
}

func TestLoader(t *testing.T) {
	feature := NewFeature(nil, zap.NewNop())
	assert.Equal(t, "sync", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}
