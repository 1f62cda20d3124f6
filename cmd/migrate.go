package cmd

import (
	"cryptogram-sync/core/database"
	"cryptogram-sync/feature/games"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the local schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the local games schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadBase()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		for _, table := range games.Tables() {
			cols, err := database.GetTableColumns(db, table)
			if err != nil {
				return err
			}
			l.Info("Table ready", zap.String("table", table), zap.Int("columns", len(cols)))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
