package reconcile

import (
	"context"
	"encoding/json"
	"time"
)

// Adapter defines model-specific access to the local store.
// Implementations must be safe for concurrent use: the executor calls ApplyDownload and
// LoadUpload from several goroutines at once.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "games").
	Name() string

	// NormalizeID converts an identifier received from the server into the canonical local id.
	// Unparseable ids must return a syncerr.InvalidIdentifier error; the executor skips them.
	NormalizeID(raw string) (string, error)

	// BuildSummary produces the summary of every local game owned by ownerID.
	// It must not mutate the store.
	BuildSummary(ctx context.Context, ownerID string) (*LocalGamesSummary, error)

	// ComputeChanges lists games modified strictly after since.
	ComputeChanges(ctx context.Context, ownerID string, since time.Time) ([]GameChange, error)

	// ApplyDownload decodes a downloaded game payload and upserts it for ownerID.
	// Applying the same payload twice must leave the store unchanged.
	ApplyDownload(ctx context.Context, ownerID string, payload json.RawMessage) error

	// LoadUpload returns the upload payload for a local game.
	// A missing record must return a syncerr.LocalRecordMissing error.
	LoadUpload(ctx context.Context, id string) (json.RawMessage, error)

	// DeleteLocal removes a local game. Deleting an absent game is not an error.
	DeleteLocal(ctx context.Context, id string) error
}

// Remote is the sync server as seen by the engine.
type Remote interface {
	// RequestPlan asks the server for a reconciliation plan.
	RequestPlan(ctx context.Context, token string, req PlanRequest) (*Plan, error)

	// FetchGame downloads a single game payload.
	FetchGame(ctx context.Context, token, id string) (json.RawMessage, error)

	// UploadGame uploads a single game payload.
	UploadGame(ctx context.Context, token, id string, payload json.RawMessage) error
}

// TokenProvider supplies bearer tokens. An empty token means no user is signed in.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// BookkeepingStore persists Bookkeeping across restarts.
type BookkeepingStore interface {
	LoadBookkeeping(ctx context.Context) (Bookkeeping, error)
	SaveBookkeeping(ctx context.Context, b Bookkeeping) error
}

// Publisher announces finished cycles to other processes.
type Publisher interface {
	PublishCycle(ctx context.Context, result Result) error
}

// ReportArchiver stores cycle reports for later inspection.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, cycleID string, report any) error
}
