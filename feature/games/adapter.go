package games

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cryptogram-sync/core/gameid"
	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/core/syncerr"
	"cryptogram-sync/feature/games/models"

	"go.uber.org/zap"
)

// Adapter implements reconcile.Adapter on top of the gorm store.
type Adapter struct {
	store  *Store
	logger *zap.Logger
}

var _ reconcile.Adapter = (*Adapter)(nil)

// NewAdapter creates a games adapter.
func NewAdapter(store *Store, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{store: store, logger: logger}
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return "games"
}

// NormalizeID decodes any identifier format to the canonical UUID.
func (a *Adapter) NormalizeID(raw string) (string, error) {
	return gameid.Canonical(raw)
}

// BuildSummary implements reconcile.Adapter.
func (a *Adapter) BuildSummary(ctx context.Context, ownerID string) (*reconcile.LocalGamesSummary, error) {
	return BuildSummary(ctx, a.store, ownerID)
}

// ComputeChanges implements reconcile.Adapter.
func (a *Adapter) ComputeChanges(ctx context.Context, ownerID string, since time.Time) ([]reconcile.GameChange, error) {
	return ComputeChanges(ctx, a.store, ownerID, since)
}

// ApplyDownload decodes, validates and upserts a downloaded game.
func (a *Adapter) ApplyDownload(ctx context.Context, ownerID string, payload json.RawMessage) error {
	record, err := models.DecodeRecord(payload, ownerID)
	if err != nil {
		return err
	}
	if err := a.store.EnsureUser(ctx, ownerID); err != nil {
		return err
	}
	if err := a.store.Upsert(ctx, record); err != nil {
		return err
	}
	a.logger.Debug("Applied downloaded game", zap.String("game_id", record.ID))
	return nil
}

// LoadUpload returns the wire payload of a finished local game.
// Missing and in-progress games are syncerr.LocalRecordMissing errors.
func (a *Adapter) LoadUpload(ctx context.Context, id string) (json.RawMessage, error) {
	record, err := a.store.FetchByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, syncerr.Newf(syncerr.LocalRecordMissing, "load_upload", id, "no local record")
	}
	if err != nil {
		return nil, err
	}
	if !record.IsTerminal() {
		return nil, syncerr.Newf(syncerr.LocalRecordMissing, "load_upload", id, "local game is still in progress")
	}
	return models.MarshalRecord(record)
}

// DeleteLocal removes a local game.
func (a *Adapter) DeleteLocal(ctx context.Context, id string) error {
	return a.store.Delete(ctx, id)
}
