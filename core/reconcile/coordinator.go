package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cryptogram-sync/core/metrics"
	"cryptogram-sync/core/syncerr"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CoordinatorConfig bundles the collaborators of a Coordinator.
type CoordinatorConfig struct {
	// OwnerID is the user whose games are reconciled.
	OwnerID string

	// Adapter provides access to the local store.
	Adapter Adapter

	// Remote is the sync server client.
	Remote Remote

	// Tokens supplies bearer tokens.
	Tokens TokenProvider

	// Bookkeeping persists sync state.
	Bookkeeping BookkeepingStore

	// Policy holds strategy windows and executor limits.
	Policy Config

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics, Publisher and Archiver are optional.
	Metrics   *metrics.Metrics
	Publisher Publisher
	Archiver  ReportArchiver

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Result is delivered once per Reconcile call.
type Result struct {
	CycleID     string           `json:"cycleId"`
	Trigger     Trigger          `json:"trigger"`
	Decision    Decision         `json:"decision"`
	SyncType    SyncType         `json:"syncType,omitempty"`
	Success     bool             `json:"success"`
	Outcome     Outcome          `json:"outcome"`
	Message     string           `json:"message"`
	Report      *ExecutionReport `json:"report,omitempty"`
	Err         error            `json:"-"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt time.Time        `json:"completedAt"`
}

// Coordinator runs reconciliation cycles for one owner.
type Coordinator struct {
	cfg      CoordinatorConfig
	policy   Config
	executor *Executor
	logger   *zap.Logger
	now      func() time.Time

	// mu serialises bookkeeping read-modify-write sequences.
	mu sync.Mutex
}

// NewCoordinator creates a coordinator from its collaborators.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	policy := cfg.Policy.withDefaults()
	return &Coordinator{
		cfg:      cfg,
		policy:   policy,
		executor: NewExecutor(cfg.Adapter, cfg.Remote, policy, cfg.Logger, cfg.Metrics),
		logger:   cfg.Logger,
		now:      cfg.Clock,
	}
}

// OwnerID returns the user whose games are reconciled.
func (c *Coordinator) OwnerID() string {
	return c.cfg.OwnerID
}

// Bookkeeping returns the persisted sync state.
func (c *Coordinator) Bookkeeping(ctx context.Context) (Bookkeeping, error) {
	return c.cfg.Bookkeeping.LoadBookkeeping(ctx)
}

// Run executes Reconcile and waits for its result.
func (c *Coordinator) Run(ctx context.Context, trigger Trigger) Result {
	return <-c.Reconcile(ctx, trigger)
}

// Reconcile starts a cycle for the trigger. The returned channel receives exactly one Result
// and is then closed. Skip decisions are answered before Reconcile returns; deferred decisions
// wait for their delay unless ctx is cancelled first.
func (c *Coordinator) Reconcile(ctx context.Context, trigger Trigger) <-chan Result {
	out := make(chan Result, 1)
	res := Result{
		CycleID:   ulid.Make().String(),
		Trigger:   trigger,
		StartedAt: c.now(),
	}
	log := c.logger.With(zap.String("cycle_id", res.CycleID), zap.String("trigger", string(trigger)))

	decision, err := c.decide(ctx, trigger)
	if err != nil {
		res.Outcome = OutcomeRequestFailed
		res.Message = fmt.Sprintf("Sync request failed: %v", err)
		res.Err = err
		out <- c.complete(ctx, log, res)
		close(out)
		return out
	}
	res.Decision = decision
	res.SyncType = decision.SyncType()
	c.cfg.Metrics.ObserveDecision(string(trigger), string(decision.Action))
	log.Info("Sync decision",
		zap.String("action", string(decision.Action)),
		zap.String("reason", decision.Reason),
		zap.Duration("delay", decision.Delay))

	if decision.Action == ActionSkip {
		res.Success = true
		res.Outcome = OutcomeSkipped
		res.Message = "Sync skipped: " + decision.Reason
		out <- c.complete(ctx, log, res)
		close(out)
		return out
	}

	go func() {
		defer close(out)
		if decision.Action == ActionDeferred {
			if err := sleep(ctx, decision.Delay); err != nil {
				res.Outcome = OutcomeCancelled
				res.Message = "Sync cancelled before start"
				res.Err = err
				out <- c.complete(ctx, log, res)
				return
			}
		}
		out <- c.runCycle(ctx, log, res)
	}()

	return out
}

// decide runs the strategy and persists the launch count it may have changed.
func (c *Coordinator) decide(ctx context.Context, trigger Trigger) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bk, err := c.cfg.Bookkeeping.LoadBookkeeping(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load bookkeeping: %w", err)
	}

	decision, next := Select(trigger, bk, c.now(), c.policy)
	if next.LaunchCount != bk.LaunchCount {
		if err := c.cfg.Bookkeeping.SaveBookkeeping(ctx, next); err != nil {
			c.logger.Warn("Failed to persist launch count", zap.Error(err))
		}
	}
	return decision, nil
}

func (c *Coordinator) runCycle(ctx context.Context, log *zap.Logger, res Result) Result {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconcile.cycle")
	defer span.End()
	span.SetAttributes(
		attribute.String("cycle_id", res.CycleID),
		attribute.String("trigger", string(res.Trigger)),
	)

	token, err := c.cfg.Tokens.AccessToken(ctx)
	if err == nil && token == "" {
		err = syncerr.Newf(syncerr.AuthenticationRequired, "access_token", "", "no signed-in user")
	}
	if err != nil {
		if !syncerr.IsKind(err, syncerr.AuthenticationRequired) {
			err = syncerr.New(syncerr.AuthenticationRequired, "access_token", "", err)
		}
		res.Outcome = OutcomeUnauthenticated
		res.Message = "Authentication required"
		res.Err = err
		span.SetStatus(codes.Error, res.Message)
		return c.complete(ctx, log, res)
	}

	bk, err := c.cfg.Bookkeeping.LoadBookkeeping(ctx)
	if err != nil {
		return c.requestFailed(ctx, log, res, fmt.Errorf("failed to load bookkeeping: %w", err))
	}
	if res.SyncType == SyncIncremental && bk.LastSuccessfulSync.IsZero() {
		log.Info("No previous successful sync, upgrading to full sync")
		res.SyncType = SyncFull
	}
	span.SetAttributes(attribute.String("sync_type", string(res.SyncType)))

	req, err := c.buildRequest(ctx, res.SyncType, bk.LastSuccessfulSync)
	if err != nil {
		return c.requestFailed(ctx, log, res, err)
	}

	plan, err := c.cfg.Remote.RequestPlan(ctx, token, req)
	if err != nil {
		c.cfg.Metrics.ObservePlanRequest(string(req.Type), string(syncerr.KindOf(err)))
		span.SetStatus(codes.Error, err.Error())
		return c.requestFailed(ctx, log, res, err)
	}
	c.cfg.Metrics.ObservePlanRequest(string(req.Type), "ok")
	log.Info("Received reconciliation plan",
		zap.Int("downloads", len(plan.DownloadIDs)),
		zap.Int("uploads", len(plan.UploadIDs)),
		zap.Int("conflicts", len(plan.Conflicts)),
		zap.Int("deletes", len(plan.DeleteLocalIDs)))

	report := c.executor.Execute(ctx, token, c.cfg.OwnerID, plan)
	res.Report = report
	res.Outcome = Classify(report.Succeeded, report.Failed, c.policy.FailureThreshold)
	res.Success = res.Outcome.Successful()
	res.Message = outcomeMessage(res.Outcome, report)
	if !res.Success {
		res.Err = firstFailure(report)
		span.SetStatus(codes.Error, res.Message)
	}

	c.recordCycle(ctx, res.SyncType, res.Outcome)
	return c.complete(ctx, log, res)
}

// buildRequest assembles the plan request for the sync type.
func (c *Coordinator) buildRequest(ctx context.Context, syncType SyncType, since time.Time) (PlanRequest, error) {
	req := PlanRequest{UserID: c.cfg.OwnerID}

	if syncType == SyncFull {
		summary, err := c.cfg.Adapter.BuildSummary(ctx, c.cfg.OwnerID)
		if err != nil {
			return req, fmt.Errorf("failed to build local summary: %w", err)
		}
		req.Type = RequestFull
		req.LocalSummary = summary
		return req, nil
	}

	changes, err := c.cfg.Adapter.ComputeChanges(ctx, c.cfg.OwnerID, since)
	if err != nil {
		return req, fmt.Errorf("failed to compute local changes: %w", err)
	}
	sinceUnix := since.Unix()
	req.SinceTimestamp = &sinceUnix
	req.LocalChanges = changes
	req.Type = RequestIncremental

	if c.policy.EnhancedIncremental {
		summary, err := c.cfg.Adapter.BuildSummary(ctx, c.cfg.OwnerID)
		if err != nil {
			return req, fmt.Errorf("failed to build local summary: %w", err)
		}
		req.Type = RequestIncrementalEnhanced
		req.LocalSummary = summary
	}
	return req, nil
}

// requestFailed finishes a cycle that never reached the executor.
// The attempt is still recorded.
func (c *Coordinator) requestFailed(ctx context.Context, log *zap.Logger, res Result, err error) Result {
	res.Outcome = OutcomeRequestFailed
	res.Message = fmt.Sprintf("Sync request failed: %v", err)
	res.Err = err
	c.recordCycle(ctx, res.SyncType, res.Outcome)
	return c.complete(ctx, log, res)
}

// recordCycle applies the cycle result to the latest persisted bookkeeping.
func (c *Coordinator) recordCycle(ctx context.Context, syncType SyncType, outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bk, err := c.cfg.Bookkeeping.LoadBookkeeping(ctx)
	if err != nil {
		c.logger.Error("Failed to load bookkeeping", zap.Error(err))
		return
	}
	bk = bk.RecordCycle(c.now(), syncType, outcome)
	if err := c.cfg.Bookkeeping.SaveBookkeeping(ctx, bk); err != nil {
		c.logger.Error("Failed to save bookkeeping", zap.Error(err))
		return
	}
	if outcome.Successful() {
		c.cfg.Metrics.SetLastSuccess(bk.LastSuccessfulSync)
	}
}

// complete stamps the result, records metrics and announces executed cycles.
func (c *Coordinator) complete(ctx context.Context, log *zap.Logger, res Result) Result {
	res.CompletedAt = c.now()
	c.cfg.Metrics.ObserveCycle(string(res.Trigger), string(res.SyncType), string(res.Outcome), res.CompletedAt.Sub(res.StartedAt))

	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.String("sync_type", string(res.SyncType)),
		zap.String("message", res.Message),
	}
	if res.Report != nil {
		fields = append(fields,
			zap.Int("succeeded", res.Report.Succeeded),
			zap.Int("failed", res.Report.Failed),
			zap.Int("skipped", res.Report.Skipped),
			zap.Int("deleted", res.Report.Deleted))
	}
	if res.Success {
		log.Info("Sync cycle finished", fields...)
	} else {
		log.Warn("Sync cycle finished", append(fields, zap.Error(res.Err))...)
	}

	if res.Report == nil && res.Outcome != OutcomeRequestFailed {
		return res
	}
	if c.cfg.Publisher != nil {
		if err := c.cfg.Publisher.PublishCycle(ctx, res); err != nil {
			log.Warn("Failed to publish cycle event", zap.Error(err))
		}
	}
	if c.policy.ArchiveReports && c.cfg.Archiver != nil {
		if err := c.cfg.Archiver.ArchiveReport(ctx, res.CycleID, res); err != nil {
			log.Warn("Failed to archive cycle report", zap.Error(err))
		}
	}
	return res
}

func outcomeMessage(outcome Outcome, report *ExecutionReport) string {
	switch outcome {
	case OutcomeNothingToSync:
		return "Nothing to sync"
	case OutcomeSucceeded:
		return fmt.Sprintf("Sync completed: %d operations", report.Succeeded)
	case OutcomePartial:
		return fmt.Sprintf("Partial sync completed: %d operations failed", report.Failed)
	default:
		return fmt.Sprintf("Sync failed: %d of %d operations failed", report.Failed, report.Total())
	}
}

func firstFailure(report *ExecutionReport) error {
	if len(report.Failures) == 0 {
		return nil
	}
	return report.Failures[0].Err
}
