package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cryptogram-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile command
	reconcileTrigger string
)

// reconcileCmd runs a single reconciliation cycle and waits for its result.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation cycle",
	Long: `Runs a single reconciliation cycle for the configured owner and prints the result.

The trigger decides the strategy exactly as it would in the running service, so a
recent successful sync may cause the cycle to be skipped.

Examples:
  # Manual sync (full unless a sync succeeded in the last minute)
  reconcile

  # Simulate an app launch
  reconcile --trigger app_launch`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileTrigger, "trigger", string(reconcile.TriggerManual),
		"Trigger of the cycle (app_launch, user_login, game_completion, manual, background)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	trigger, err := reconcile.ParseTrigger(reconcileTrigger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("Starting reconciliation", zap.String("trigger", string(trigger)))
	res := rt.coordinator.Run(ctx, trigger)

	printCycleResult(rt.logger, res)

	if !res.Success {
		if res.Err != nil {
			return fmt.Errorf("reconciliation %s: %w", res.Outcome, res.Err)
		}
		return fmt.Errorf("reconciliation %s: %s", res.Outcome, res.Message)
	}
	return nil
}

// printCycleResult logs the outcome of a cycle and a sample of its failures.
func printCycleResult(l *zap.Logger, res reconcile.Result) {
	l.Info("Reconciliation result",
		zap.String("cycle_id", res.CycleID),
		zap.String("decision", string(res.Decision.Action)),
		zap.String("outcome", string(res.Outcome)),
		zap.Bool("success", res.Success),
		zap.String("message", res.Message),
	)

	r := res.Report
	if r == nil {
		return
	}
	l.Info("Operations",
		zap.Int("downloads", r.Downloads),
		zap.Int("uploads", r.Uploads),
		zap.Int("conflicts", r.Conflicts),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("failed", r.Failed),
		zap.Int("skipped", r.Skipped),
		zap.Int("deleted", r.Deleted),
		zap.Duration("duration", r.Duration),
	)

	// Show sample of failures (max 5 for logger)
	maxShow := min(5, len(r.Failures))
	for _, f := range r.Failures[:maxShow] {
		l.Warn("Failed item",
			zap.String("class", string(f.Class)),
			zap.String("game_id", f.ID),
			zap.String("kind", string(f.Kind)),
			zap.String("error", f.Error),
		)
	}
	if len(r.Failures) > maxShow {
		l.Info("Additional failures not shown", zap.Int("count", len(r.Failures)-maxShow))
	}
}
