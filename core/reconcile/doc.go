// Package reconcile keeps completed game records consistent between the local store and the
// remote sync server.
//
// A reconciliation cycle always flows in one direction:
//
//	trigger -> strategy -> snapshot/changes -> plan request -> plan -> execution -> bookkeeping
//
// # Architecture
//
// The package consists of four parts:
//
// 1. Strategy: Select is a pure function that turns a Trigger and the persisted Bookkeeping into
// a Decision (skip, incremental, full, or deferred). It never performs I/O, which keeps every
// window and threshold testable without clocks or servers.
//
// 2. Adapter: model-specific access to the local store. The adapter builds the LocalGamesSummary
// and the GameChange list sent to the server, normalises identifiers, and applies downloaded
// payloads. See feature/games for the implementation backed by gorm.
//
// 3. Executor: runs a Plan against a Remote with one shared concurrency limit. Downloads are
// started in staggered batches, uploads and conflicts run alongside them, and every item has
// its own timeout. Item failures are collected, never fatal to their siblings.
//
// 4. Coordinator: glues the parts together, owns the cycle lifecycle, and updates bookkeeping
// exactly once after the executor joins.
//
// # Outcomes
//
// A cycle that executed a plan is classified by its failure ratio:
//
//   - no operations: NothingToSync, reported as success with "Nothing to sync"
//   - no failures: Succeeded
//   - failures below the threshold (default 50%): Partial, reported as failure
//   - otherwise: Failed
//
// Only successful cycles advance LastSuccessfulSync, so a partial cycle is retried by the next
// trigger instead of being forgotten.
//
// # Usage Example
//
//	coord := reconcile.NewCoordinator(reconcile.CoordinatorConfig{
//	    OwnerID:     userID,
//	    Adapter:     games.NewAdapter(store, logger),
//	    Remote:      protocol.NewClient(cfg.Remote, archiver, logger),
//	    Tokens:      authProvider,
//	    Bookkeeping: games.NewBookkeepingStore(db),
//	    Policy:      cfg.Sync,
//	    Logger:      logger,
//	})
//
//	result := coord.Run(ctx, reconcile.TriggerManual)
//	if !result.Success {
//	    logger.Warn("sync failed", zap.String("message", result.Message))
//	}
package reconcile
