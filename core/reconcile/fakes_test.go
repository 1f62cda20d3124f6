package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cryptogram-sync/core/syncerr"
)

// fakeAdapter is an in-memory adapter. Ids starting with "bad" are invalid.
type fakeAdapter struct {
	mu      sync.Mutex
	games   map[string]json.RawMessage
	applied []string
	deleted []string

	summary    *LocalGamesSummary
	changes    []GameChange
	summaryErr error
	sinceSeen  time.Time
}

func newFakeAdapter(ids ...string) *fakeAdapter {
	a := &fakeAdapter{games: make(map[string]json.RawMessage)}
	for _, id := range ids {
		a.games[id] = json.RawMessage(fmt.Sprintf(`{"id":%q}`, id))
	}
	return a
}

func (a *fakeAdapter) Name() string { return "fake" }

func (a *fakeAdapter) NormalizeID(raw string) (string, error) {
	if strings.HasPrefix(raw, "bad") {
		return "", syncerr.Newf(syncerr.InvalidIdentifier, "decode_id", raw, "unparseable")
	}
	return strings.ToLower(raw), nil
}

func (a *fakeAdapter) BuildSummary(ctx context.Context, ownerID string) (*LocalGamesSummary, error) {
	if a.summaryErr != nil {
		return nil, a.summaryErr
	}
	if a.summary != nil {
		return a.summary, nil
	}
	return &LocalGamesSummary{TotalGames: len(a.games), GameSummaries: []GameSummary{}}, nil
}

func (a *fakeAdapter) ComputeChanges(ctx context.Context, ownerID string, since time.Time) ([]GameChange, error) {
	a.mu.Lock()
	a.sinceSeen = since
	a.mu.Unlock()
	return a.changes, nil
}

func (a *fakeAdapter) ApplyDownload(ctx context.Context, ownerID string, payload json.RawMessage) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return syncerr.New(syncerr.DecodeFailed, "apply_download", "", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games[body.ID] = payload
	a.applied = append(a.applied, body.ID)
	return nil
}

func (a *fakeAdapter) LoadUpload(ctx context.Context, id string) (json.RawMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	payload, ok := a.games[id]
	if !ok {
		return nil, syncerr.Newf(syncerr.LocalRecordMissing, "load_upload", id, "no local record")
	}
	return payload, nil
}

func (a *fakeAdapter) DeleteLocal(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.games, id)
	a.deleted = append(a.deleted, id)
	return nil
}

// fakeRemote serves games from memory and tracks concurrency.
type fakeRemote struct {
	mu       sync.Mutex
	plan     *Plan
	planErr  error
	requests []PlanRequest
	uploaded []string
	started  []string

	failIDs  map[string]bool
	blockIDs map[string]bool
	delay    time.Duration
	block    bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (r *fakeRemote) RequestPlan(ctx context.Context, token string, req PlanRequest) (*Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.planErr != nil {
		return nil, r.planErr
	}
	if r.plan == nil {
		return &Plan{}, nil
	}
	return r.plan, nil
}

func (r *fakeRemote) enter(id string) func() {
	r.mu.Lock()
	r.started = append(r.started, id)
	r.mu.Unlock()

	n := r.inFlight.Add(1)
	for {
		peak := r.maxInFlight.Load()
		if n <= peak || r.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	return func() { r.inFlight.Add(-1) }
}

func (r *fakeRemote) wait(ctx context.Context, op, id string) error {
	if r.block || r.blockIDs[id] {
		<-ctx.Done()
		return syncerr.New(syncerr.Transport, op, id, ctx.Err())
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.failIDs[id] {
		return syncerr.Rejected(op, id, 500, "boom")
	}
	return nil
}

func (r *fakeRemote) FetchGame(ctx context.Context, token, id string) (json.RawMessage, error) {
	defer r.enter(id)()
	if err := r.wait(ctx, "fetch_game", id); err != nil {
		return nil, err
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%q}`, strings.ToLower(id))), nil
}

func (r *fakeRemote) UploadGame(ctx context.Context, token, id string, payload json.RawMessage) error {
	defer r.enter(id)()
	if err := r.wait(ctx, "upload_game", id); err != nil {
		return err
	}
	r.mu.Lock()
	r.uploaded = append(r.uploaded, id)
	r.mu.Unlock()
	return nil
}

func (r *fakeRemote) requestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return s.token, s.err
}

type memoryBookkeeping struct {
	mu    sync.Mutex
	state Bookkeeping
	saves int
}

func (m *memoryBookkeeping) LoadBookkeeping(ctx context.Context) (Bookkeeping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memoryBookkeeping) SaveBookkeeping(ctx context.Context, b Bookkeeping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = b
	m.saves++
	return nil
}

func (m *memoryBookkeeping) get() Bookkeeping {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []Result
}

func (p *recordingPublisher) PublishCycle(ctx context.Context, result Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return nil
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%02d", prefix, i)
	}
	return out
}
