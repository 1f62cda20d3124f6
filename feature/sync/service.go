package sync

import (
	"context"
	gosync "sync"
	"sync/atomic"
	"time"

	"cryptogram-sync/core/logger"
	"cryptogram-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Status is the state reported by GET /sync/status.
type Status struct {
	OwnerID     string                `json:"ownerId"`
	InFlight    bool                  `json:"inFlight"`
	Bookkeeping reconcile.Bookkeeping `json:"bookkeeping"`
	LastResult  *reconcile.Result     `json:"lastResult,omitempty"`
}

// Service serialises reconciliation cycles of one owner.
// Each trigger runs its own decision once the cycle ahead of it has finished; only
// concurrent background triggers share a single cycle.
type Service struct {
	coordinator *reconcile.Coordinator
	logger      *zap.Logger

	sf       singleflight.Group
	runMu    gosync.Mutex
	inFlight atomic.Bool

	mu   gosync.RWMutex
	last *reconcile.Result

	wg gosync.WaitGroup
}

// NewService creates a sync service around coordinator.
func NewService(coordinator *reconcile.Coordinator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{coordinator: coordinator, logger: logger}
}

// Trigger runs a cycle for trigger and waits for its result. A cycle already running for the
// owner is finished first. Background triggers that arrive together share one cycle; shared
// reports whether the result was delivered to more than one caller.
// The cycle is not cancelled when ctx is; other callers may be waiting on it.
func (s *Service) Trigger(ctx context.Context, trigger reconcile.Trigger) (res reconcile.Result, shared bool) {
	runCtx := context.WithoutCancel(ctx)
	if !mergeable(trigger) {
		return s.run(runCtx, trigger), false
	}

	v, _, shared := s.sf.Do(s.coordinator.OwnerID()+"/"+string(trigger), func() (any, error) {
		return s.run(runCtx, trigger), nil
	})
	res = v.(reconcile.Result)
	if shared {
		logger.WithCycle(s.logger, res.CycleID, string(trigger)).Debug("Joined in-flight sync cycle")
	}
	return res, shared
}

// mergeable reports whether concurrent triggers of this kind may share one cycle.
// Manual must never be downgraded and every app launch must be counted.
func mergeable(trigger reconcile.Trigger) bool {
	return trigger == reconcile.TriggerBackground
}

func (s *Service) run(ctx context.Context, trigger reconcile.Trigger) reconcile.Result {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.inFlight.Store(true)
	defer s.inFlight.Store(false)

	res := s.coordinator.Run(ctx, trigger)
	s.remember(res)
	return res
}

// TriggerAsync starts a cycle in the background. Close waits for it.
func (s *Service) TriggerAsync(ctx context.Context, trigger reconcile.Trigger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Trigger(ctx, trigger)
	}()
}

// RunBackground fires a background trigger every interval until ctx is cancelled.
func (s *Service) RunBackground(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Trigger(ctx, reconcile.TriggerBackground)
			}
		}
	}()
}

// Close waits for background and asynchronous cycles to finish.
func (s *Service) Close() {
	s.wg.Wait()
}

// Status returns the persisted bookkeeping and the last completed cycle.
func (s *Service) Status(ctx context.Context) (Status, error) {
	bk, err := s.coordinator.Bookkeeping(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		OwnerID:     s.coordinator.OwnerID(),
		InFlight:    s.inFlight.Load(),
		Bookkeeping: bk,
		LastResult:  s.LastResult(),
	}, nil
}

// LastResult returns the most recent cycle result, or nil before the first cycle.
func (s *Service) LastResult() *reconcile.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	res := *s.last
	return &res
}

func (s *Service) remember(res reconcile.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &res
}
