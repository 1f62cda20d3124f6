package integrity

import (
	"context"
	"errors"

	"cryptogram-sync/core/storage"
	"cryptogram-sync/feature/games/models"
	"cryptogram-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrArchiveDisabled is returned by the structure checks when no object storage is configured.
var ErrArchiveDisabled = errors.New("diagnostics archive is disabled")

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	prefix  string
	db      *gorm.DB
	ownerID string
	logger  *zap.Logger
}

// NewService creates a new integrity service. client may be nil when the archive is disabled.
func NewService(client storage.Client, storageCfg storage.Config, db *gorm.DB, ownerID string, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		bucket:  storageCfg.Bucket,
		prefix:  storageCfg.Prefix,
		db:      db,
		ownerID: ownerID,
		logger:  logger,
	}
}

// CheckStructure returns a list of missing archive folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrArchiveDisabled
	}
	return checks.CheckStructure(ctx, s.client, s.bucket, s.prefix)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return ErrArchiveDisabled
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.prefix, s.logger, missing)
}

// CheckSchema compares the local tables with the game store models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, models.GameRecord{}, models.UserLink{}, models.SyncSetting{})
}

// CheckRecords validates the stored games of the configured owner.
func (s *Service) CheckRecords(ctx context.Context) (*checks.RecordsReport, error) {
	return checks.CheckRecords(ctx, s.db, s.ownerID, 0)
}
