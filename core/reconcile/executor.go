package reconcile

import (
	"context"
	"sync"
	"time"

	"cryptogram-sync/core/metrics"
	"cryptogram-sync/core/syncerr"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const tracerName = "cryptogram-sync/reconcile"

// OperationClass identifies the kind of plan item.
type OperationClass string

const (
	ClassDownload OperationClass = "download"
	ClassUpload   OperationClass = "upload"
	ClassConflict OperationClass = "conflict"
	ClassDelete   OperationClass = "delete"
)

// ItemError records a failed or skipped plan item.
type ItemError struct {
	Class OperationClass `json:"class"`
	ID    string         `json:"id"`
	Kind  syncerr.Kind   `json:"kind"`
	Error string         `json:"error"`
	Err   error          `json:"-"`
}

// ExecutionReport aggregates the result of executing a plan.
// Succeeded and Failed cover downloads, uploads and conflicts only.
type ExecutionReport struct {
	// Planned counts per class.
	Downloads int `json:"downloads"`
	Uploads   int `json:"uploads"`
	Conflicts int `json:"conflicts"`

	// Network operation results.
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// Local deletions, executed after the network operations joined.
	Deleted      int `json:"deleted"`
	DeleteFailed int `json:"deleteFailed"`

	// Failures lists every failed item.
	Failures []ItemError `json:"failures,omitempty"`

	// SkippedItems lists items skipped because their id could not be parsed.
	SkippedItems []ItemError `json:"skippedItems,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Total returns the number of network operations that ran to a result.
func (r *ExecutionReport) Total() int {
	return r.Succeeded + r.Failed
}

// recorder collects item results from concurrent goroutines.
type recorder struct {
	mu      sync.Mutex
	report  *ExecutionReport
	metrics *metrics.Metrics
}

func (r *recorder) succeed(class OperationClass, d time.Duration) {
	r.mu.Lock()
	r.report.Succeeded++
	r.mu.Unlock()
	r.metrics.ObserveOperation(string(class), "succeeded", d)
}

func (r *recorder) fail(class OperationClass, id string, err error, d time.Duration) {
	r.mu.Lock()
	r.report.Failed++
	r.report.Failures = append(r.report.Failures, newItemError(class, id, err))
	r.mu.Unlock()
	r.metrics.ObserveOperation(string(class), "failed", d)
}

func (r *recorder) skip(class OperationClass, id string, err error) {
	r.mu.Lock()
	r.report.Skipped++
	r.report.SkippedItems = append(r.report.SkippedItems, newItemError(class, id, err))
	r.mu.Unlock()
	r.metrics.ObserveOperation(string(class), "skipped", 0)
}

func newItemError(class OperationClass, id string, err error) ItemError {
	return ItemError{Class: class, ID: id, Kind: syncerr.KindOf(err), Error: err.Error(), Err: err}
}

// Executor runs reconciliation plans.
type Executor struct {
	adapter Adapter
	remote  Remote
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewExecutor creates an executor. Metrics may be nil.
func NewExecutor(adapter Adapter, remote Remote, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		adapter: adapter,
		remote:  remote,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		metrics: m,
	}
}

// Execute runs every item of the plan and returns once all of them finished.
// Item failures are recorded in the report and never stop other items.
func (e *Executor) Execute(ctx context.Context, token, ownerID string, plan *Plan) *ExecutionReport {
	start := time.Now()
	report := &ExecutionReport{
		Downloads: len(plan.DownloadIDs),
		Uploads:   len(plan.UploadIDs),
		Conflicts: len(plan.Conflicts),
	}
	rec := &recorder{report: report, metrics: e.metrics}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconcile.execute")
	defer span.End()
	span.SetAttributes(
		attribute.Int("downloads", report.Downloads),
		attribute.Int("uploads", report.Uploads),
		attribute.Int("conflicts", report.Conflicts),
	)

	sem := semaphore.NewWeighted(int64(e.cfg.MaxConcurrency))
	var wg sync.WaitGroup

	// Downloads are dispatched in staggered batches from a single goroutine so batch i
	// always starts before batch i+1.
	if len(plan.DownloadIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, batch := range chunk(plan.DownloadIDs, e.cfg.DownloadBatchSize) {
				if i > 0 && e.cfg.BatchStagger > 0 {
					if err := sleep(ctx, e.cfg.BatchStagger); err != nil {
						e.failRemaining(rec, plan.DownloadIDs[i*e.cfg.DownloadBatchSize:], err)
						return
					}
				}
				e.logger.Debug("Starting download batch", zap.Int("batch", i), zap.Int("size", len(batch)))
				for _, raw := range batch {
					wg.Add(1)
					go func(raw string) {
						defer wg.Done()
						e.run(ctx, sem, rec, ClassDownload, raw, func(ctx context.Context, id string) error {
							return e.download(ctx, token, ownerID, raw)
						})
					}(raw)
				}
			}
		}()
	}

	for _, raw := range plan.UploadIDs {
		wg.Add(1)
		go func(raw string) {
			defer wg.Done()
			e.run(ctx, sem, rec, ClassUpload, raw, func(ctx context.Context, id string) error {
				return e.upload(ctx, token, raw, id)
			})
		}(raw)
	}

	for _, conflict := range plan.Conflicts {
		wg.Add(1)
		go func(c Conflict) {
			defer wg.Done()
			e.logger.Info("Resolving conflict with server copy",
				zap.String("game_id", c.ID),
				zap.String("reason", c.Reason))
			e.run(ctx, sem, rec, ClassConflict, c.ID, func(ctx context.Context, id string) error {
				return e.download(ctx, token, ownerID, c.ID)
			})
		}(conflict)
	}

	wg.Wait()

	e.deleteLocal(ctx, rec, plan.DeleteLocalIDs)

	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("succeeded", report.Succeeded),
		attribute.Int("failed", report.Failed),
		attribute.Int("skipped", report.Skipped),
	)
	if report.Failed > 0 {
		span.SetStatus(codes.Error, "plan items failed")
	}

	return report
}

// run normalises the id, waits for a concurrency slot and runs op under the item timeout.
func (e *Executor) run(ctx context.Context, sem *semaphore.Weighted, rec *recorder, class OperationClass, raw string, op func(context.Context, string) error) {
	id, err := e.adapter.NormalizeID(raw)
	if err != nil {
		trace.SpanFromContext(ctx).AddEvent("item_skipped", trace.WithAttributes(
			attribute.String("class", string(class)),
			attribute.String("game_id", raw)))
		e.logger.Warn("Skipping plan item with invalid id",
			zap.String("class", string(class)),
			zap.String("game_id", raw),
			zap.Error(err))
		rec.skip(class, raw, err)
		return
	}

	start := time.Now()
	if err := sem.Acquire(ctx, 1); err != nil {
		rec.fail(class, id, syncerr.New(syncerr.Transport, string(class), id, err), time.Since(start))
		return
	}
	defer sem.Release(1)

	itemCtx, cancel := context.WithTimeout(ctx, e.cfg.ItemTimeout)
	defer cancel()

	itemCtx, span := otel.Tracer(tracerName).Start(itemCtx, "reconcile."+string(class),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("game_id", id)))
	defer span.End()

	if err := op(itemCtx, id); err != nil {
		span.RecordError(err)
		if syncerr.IsKind(err, syncerr.InvalidIdentifier) {
			e.logger.Warn("Skipping plan item with invalid payload id",
				zap.String("class", string(class)),
				zap.String("game_id", id),
				zap.Error(err))
			rec.skip(class, id, err)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("Plan item failed",
			zap.String("class", string(class)),
			zap.String("game_id", id),
			zap.Error(err))
		rec.fail(class, id, err, time.Since(start))
		return
	}
	rec.succeed(class, time.Since(start))
}

func (e *Executor) download(ctx context.Context, token, ownerID, raw string) error {
	payload, err := e.remote.FetchGame(ctx, token, raw)
	if err != nil {
		return err
	}
	return e.adapter.ApplyDownload(ctx, ownerID, payload)
}

func (e *Executor) upload(ctx context.Context, token, raw, id string) error {
	payload, err := e.adapter.LoadUpload(ctx, id)
	if err != nil {
		return err
	}
	return e.remote.UploadGame(ctx, token, raw, payload)
}

// deleteLocal removes games the server no longer has. Results are reported separately from
// network operations.
func (e *Executor) deleteLocal(ctx context.Context, rec *recorder, ids []string) {
	for _, raw := range ids {
		id, err := e.adapter.NormalizeID(raw)
		if err != nil {
			rec.report.DeleteFailed++
			e.logger.Warn("Skipping local delete with invalid id", zap.String("game_id", raw), zap.Error(err))
			continue
		}
		if err := e.adapter.DeleteLocal(ctx, id); err != nil {
			rec.report.DeleteFailed++
			e.logger.Warn("Local delete failed", zap.String("game_id", id), zap.Error(err))
			continue
		}
		rec.report.Deleted++
	}
}

// failRemaining records every not-yet-started download as failed after cancellation.
func (e *Executor) failRemaining(rec *recorder, ids []string, cause error) {
	for _, raw := range ids {
		rec.fail(ClassDownload, raw, syncerr.New(syncerr.Transport, string(ClassDownload), raw, cause), 0)
	}
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
