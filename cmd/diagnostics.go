package cmd

import (
	"context"
	"fmt"
	"time"

	"cryptogram-sync/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// diagnosticsCmd groups the commands operating on the diagnostics archive.
var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Inspect and prune archived payloads and cycle reports",
}

var diagnosticsListCmd = &cobra.Command{
	Use:       "list [payloads|reports]",
	Short:     "List archived diagnostics",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"payloads", "reports"},
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := ""
		if len(args) == 1 {
			folder = args[0]
		}
		return withArchiver(func(ctx context.Context, a *storage.Archiver, l *zap.Logger) error {
			objects, err := a.List(ctx, folder)
			if err != nil {
				return err
			}
			for _, o := range objects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format(time.RFC3339))
			}
			l.Info("Listed diagnostics", zap.Int("count", len(objects)))
			return nil
		})
	},
}

var diagnosticsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove diagnostics older than the configured retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchiver(func(ctx context.Context, a *storage.Archiver, l *zap.Logger) error {
			removed, err := a.Prune(ctx)
			if err != nil {
				return err
			}
			l.Info("Pruned diagnostics", zap.Int("removed", removed))
			return nil
		})
	},
}

func init() {
	diagnosticsCmd.AddCommand(diagnosticsListCmd, diagnosticsPruneCmd)
	RootCmd.AddCommand(diagnosticsCmd)
}

// withArchiver connects to object storage and runs fn with a bounded context.
func withArchiver(fn func(ctx context.Context, a *storage.Archiver, l *zap.Logger) error) error {
	cfg, l, err := loadBase()
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	if !cfg.Storage.Enabled {
		return fmt.Errorf("diagnostics archive is disabled (set STORAGE_ENABLED=true)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Timeout())
	defer cancel()

	_, a, err := newArchiver(ctx, cfg, l)
	if err != nil {
		return err
	}
	return fn(ctx, a, l)
}
