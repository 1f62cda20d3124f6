package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cryptogram-sync/core/isotime"
)

// Trigger identifies the event that requested a reconciliation cycle.
type Trigger string

const (
	// TriggerAppLaunch fires once per process start.
	TriggerAppLaunch Trigger = "app_launch"
	// TriggerUserLogin fires after the user signs in.
	TriggerUserLogin Trigger = "user_login"
	// TriggerGameCompletion fires when a game reaches a terminal state.
	TriggerGameCompletion Trigger = "game_completion"
	// TriggerManual is an explicit user request.
	TriggerManual Trigger = "manual"
	// TriggerBackground is a periodic refresh.
	TriggerBackground Trigger = "background"
)

// Triggers lists every supported trigger.
var Triggers = []Trigger{
	TriggerAppLaunch,
	TriggerUserLogin,
	TriggerGameCompletion,
	TriggerManual,
	TriggerBackground,
}

// ParseTrigger accepts both snake_case and camelCase names.
func ParseTrigger(s string) (Trigger, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, t := range Triggers {
		if string(t) == normalized || strings.ReplaceAll(string(t), "_", "") == normalized {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown trigger %q", s)
}

// SyncType is the kind of cycle actually executed.
type SyncType string

const (
	// SyncFull sends the complete local summary.
	SyncFull SyncType = "full"
	// SyncIncremental sends only changes since the last successful sync.
	SyncIncremental SyncType = "incremental"
)

// RequestType is the wire value of the plan request "type" field.
type RequestType string

const (
	// RequestFull carries the local summary only.
	RequestFull RequestType = "full"
	// RequestIncremental carries local changes and the since timestamp.
	RequestIncremental RequestType = "incremental"
	// RequestIncrementalEnhanced carries the summary, the changes and the since timestamp.
	RequestIncrementalEnhanced RequestType = "incremental_enhanced"
)

// GameSummary describes one local game in a LocalGamesSummary.
type GameSummary struct {
	// ID is the canonical game identifier.
	ID string `json:"id"`

	// LastModified is the last local update time.
	LastModified isotime.Time `json:"lastModified"`

	// IsCompleted is true when the game was won or lost.
	IsCompleted bool `json:"isCompleted"`

	// Score is only present for terminal games.
	Score *int `json:"score,omitempty"`

	// Checksum fingerprints the fields that matter for reconciliation.
	Checksum string `json:"checksum"`
}

// LocalGamesSummary is the snapshot of the local store sent with full and enhanced requests.
type LocalGamesSummary struct {
	TotalGames             int           `json:"totalGames"`
	CompletedGames         int           `json:"completedGames"`
	MostRecentModification *isotime.Time `json:"mostRecentModification,omitempty"`
	GameSummaries          []GameSummary `json:"gameSummaries"`
}

// ChangeType classifies a GameChange.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// GameChange is a local modification since the last successful sync.
type GameChange struct {
	// ID is the canonical game identifier.
	ID string `json:"id"`

	// ChangeType is created when the game started after the since timestamp.
	ChangeType ChangeType `json:"changeType"`

	// LastModified is the local update time.
	LastModified isotime.Time `json:"lastModified"`

	// Payload is the full game payload, present only for terminal games.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlanRequest is the body of a reconcile request.
type PlanRequest struct {
	Type           RequestType        `json:"type"`
	UserID         string             `json:"userId"`
	SinceTimestamp *int64             `json:"sinceTimestamp,omitempty"`
	LocalSummary   *LocalGamesSummary `json:"localSummary,omitempty"`
	LocalChanges   []GameChange       `json:"localChanges,omitempty"`
}

// Conflict is a game modified on both sides. The server copy always wins.
type Conflict struct {
	ID              string        `json:"id"`
	Reason          string        `json:"reason"`
	LocalTimestamp  *isotime.Time `json:"localTimestamp,omitempty"`
	ServerTimestamp *isotime.Time `json:"serverTimestamp,omitempty"`
}

// PlanSummary carries the server's own accounting for a plan. All fields are optional.
type PlanSummary struct {
	Message     string `json:"message,omitempty"`
	ServerGames int    `json:"serverGames,omitempty"`
	ToDownload  int    `json:"toDownload,omitempty"`
	ToUpload    int    `json:"toUpload,omitempty"`
	Conflicts   int    `json:"conflicts,omitempty"`
}

// Plan is the server's reconciliation plan.
type Plan struct {
	Summary        PlanSummary `json:"summary"`
	DownloadIDs    []string    `json:"downloadIds"`
	UploadIDs      []string    `json:"uploadIds"`
	Conflicts      []Conflict  `json:"conflicts"`
	DeleteLocalIDs []string    `json:"deleteLocalIds"`
}

// NetworkOperations returns the number of downloads, uploads and conflicts in the plan.
func (p *Plan) NetworkOperations() int {
	if p == nil {
		return 0
	}
	return len(p.DownloadIDs) + len(p.UploadIDs) + len(p.Conflicts)
}

// Bookkeeping is the process-wide sync state that survives restarts.
type Bookkeeping struct {
	// LastSyncAttempt advances on every executed cycle.
	LastSyncAttempt time.Time `json:"lastSyncAttempt"`

	// LastSuccessfulSync advances only when a cycle finished without failures.
	LastSuccessfulSync time.Time `json:"lastSuccessfulSync"`

	// LastFullSync advances only when a successful cycle was a full sync.
	LastFullSync time.Time `json:"lastFullSync"`

	// LaunchCount is incremented on every AppLaunch trigger.
	LaunchCount int `json:"launchCount"`
}

// RecordCycle returns the bookkeeping after an executed cycle finished at the given time.
func (b Bookkeeping) RecordCycle(at time.Time, syncType SyncType, outcome Outcome) Bookkeeping {
	b.LastSyncAttempt = at
	if outcome.Successful() {
		b.LastSuccessfulSync = at
		if syncType == SyncFull {
			b.LastFullSync = at
		}
	}
	return b
}
