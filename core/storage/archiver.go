package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	payloadsFolder = "payloads"
	reportsFolder  = "reports"
)

// ObjectSummary describes an archived object.
type ObjectSummary struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Archiver writes diagnostics (undecodable server payloads, cycle reports) to object storage.
type Archiver struct {
	client    Client
	bucket    string
	prefix    string
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewArchiver creates an archiver on client using the bucket, prefix and retention of cfg.
func NewArchiver(client Client, cfg Config, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		retention: cfg.Retention,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context, region string) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("Created diagnostics bucket", zap.String("bucket", a.bucket))
	return nil
}

// ArchivePayload stores a raw response body under payloads/<kind>/<ulid>.json.
func (a *Archiver) ArchivePayload(ctx context.Context, kind string, body []byte) error {
	key := a.key(payloadsFolder, kind, ulid.Make().String()+".json")
	return a.put(ctx, key, body)
}

// ArchiveReport stores a cycle report as JSON under reports/<cycleID>.json.
func (a *Archiver) ArchiveReport(ctx context.Context, cycleID string, report any) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", cycleID, err)
	}
	return a.put(ctx, a.key(reportsFolder, cycleID+".json"), body)
}

// List returns the archived objects below folder (e.g. "reports" or "payloads/request_plan").
func (a *Archiver) List(ctx context.Context, folder string) ([]ObjectSummary, error) {
	prefix := a.key(folder)
	if prefix != "" {
		prefix += "/"
	}
	var out []ObjectSummary
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		out = append(out, ObjectSummary{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

// Get reads an archived object by its full key.
func (a *Archiver) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Prune removes archived objects older than the retention period and returns how many were removed.
func (a *Archiver) Prune(ctx context.Context) (int, error) {
	if a.retention <= 0 {
		return 0, nil
	}
	cutoff := a.now().Add(-a.retention)

	var expired []minio.ObjectInfo
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.prefix + "/", Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("failed to list diagnostics: %w", obj.Err)
		}
		if obj.LastModified.Before(cutoff) {
			expired = append(expired, obj)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(expired))
	for _, obj := range expired {
		objectsCh <- obj
	}
	close(objectsCh)

	failed := 0
	var firstErr error
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed++
		if firstErr == nil {
			firstErr = rerr.Err
		}
		a.logger.Warn("Failed to remove diagnostic", zap.String("key", rerr.ObjectName), zap.Error(rerr.Err))
	}

	removed := len(expired) - failed
	if firstErr != nil {
		return removed, fmt.Errorf("failed to remove %d diagnostics: %w", failed, firstErr)
	}
	a.logger.Info("Pruned diagnostics", zap.Int("removed", removed))
	return removed, nil
}

func (a *Archiver) put(ctx context.Context, key string, body []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	a.logger.Debug("Archived diagnostic", zap.String("key", key), zap.Int("bytes", len(body)))
	return nil
}

func (a *Archiver) key(parts ...string) string {
	if a.prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{a.prefix}, parts...)...)
}
