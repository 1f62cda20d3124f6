// Package storage archives sync diagnostics in S3-compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface, which keeps the archiver
// testable with core/storage/mocks.
//
// # Layout
//
//	<prefix>/payloads/<operation>/<ulid>.json   server bodies that failed to decode
//	<prefix>/reports/<cycle id>.json            execution reports of sync cycles
//
// Prune deletes objects older than the configured retention.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	archiver := storage.NewArchiver(client, cfg.Storage, logger)
//	err = archiver.ArchiveReport(ctx, result.CycleID, result.Report)
package storage
