package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"cryptogram-sync/core/database"
	"cryptogram-sync/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the local store and the diagnostics archive",
	Long:  `Checks the diagnostics folder structure, the local schema and the stored games.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the diagnostics folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the local database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// recordsCmd validates every stored game of the owner.
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Validate the stored games",
	Long:  `Scans the owner's stored games for non-canonical ids and broken invariants. Outputs metrics by default or a detailed JSON file with --json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()
		jsonOutput, _ := cmd.Flags().GetBool("json")

		svc, logg, err := integrityService(cmd.Context(), false)
		if err != nil {
			return err
		}

		report, err := svc.CheckRecords(cmd.Context())
		if err != nil {
			return fmt.Errorf("records check failed: %w", err)
		}

		if jsonOutput {
			filename := fmt.Sprintf("integrity_records_%d.json", time.Now().Unix())
			data, err := json.MarshalIndent(report.Issues, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to save JSON file: %w", err)
			}
			logg.Info("Detailed JSON report saved", zap.String("file", filename), zap.Int("items_with_issues", len(report.Issues)))
		}

		executionTime := time.Since(startTime)

		fmt.Println("\n=== Game Record Integrity ===")
		fmt.Printf("Owner: %s\n", report.OwnerID)
		fmt.Printf("Total Games: %d\n", report.Total)
		fmt.Printf("Valid: %d\n", report.Valid)
		fmt.Printf("With Issues: %d\n", len(report.Issues))
		fmt.Printf("Execution Time: %s\n", executionTime.String())

		logg.Info("Records check completed",
			zap.Int("total", report.Total),
			zap.Int("issues", len(report.Issues)),
			zap.Duration("execution_time", executionTime),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, schemaCmd, recordsCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
	recordsCmd.Flags().Bool("json", false, "Output detailed JSON format")
}

// integrityService connects the stores the checks need. The archive is optional unless needStorage is set.
func integrityService(ctx context.Context, needStorage bool) (*integrity.Service, *zap.Logger, error) {
	cfg, logg, err := loadBase()
	if err != nil {
		return nil, nil, err
	}
	logg = logg.With(zap.String("owner_id", cfg.Sync.OwnerID))

	client, _, err := newArchiver(ctx, cfg, logg)
	if err != nil {
		if needStorage {
			return nil, nil, err
		}
		logg.Warn("Diagnostics archive unavailable", zap.Error(err))
		client = nil
	}
	if client == nil && needStorage {
		return nil, nil, integrity.ErrArchiveDisabled
	}

	// Connect to Database (Optional for structure checks)
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		if !needStorage {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
	}

	return integrity.NewService(client, cfg.Storage, db, cfg.Sync.OwnerID, logg), logg, nil
}

func runIntegrityChecks(ctx context.Context, runStructure, runSchema, runRecords bool) error {
	onlyStructure := runStructure && !runSchema && !runRecords
	svc, logg, err := integrityService(ctx, onlyStructure)
	if err != nil {
		return err
	}
	defer func() { _ = logg.Sync() }()

	if runStructure {
		logg.Info("Checking diagnostics folder structure...")
		missing, err := svc.CheckStructure(ctx)
		switch {
		case errors.Is(err, integrity.ErrArchiveDisabled):
			logg.Info("Diagnostics archive is disabled, skipping structure check.")
		case err != nil:
			return fmt.Errorf("structure check failed: %w", err)
		case len(missing) == 0:
			logg.Info("Structure is intact.")
		default:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))

			if onlyStructure && fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else if onlyStructure {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runSchema {
		logg.Info("Checking local schema integrity...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Local schema matches the game store models.")
		} else {
			logg.Warn("Local schema mismatches found. Run migrate to repair.")
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runRecords {
		logg.Info("Checking stored games...")
		report, err := svc.CheckRecords(ctx)
		if err != nil {
			return fmt.Errorf("records check failed: %w", err)
		}
		if len(report.Issues) == 0 {
			logg.Info("All stored games are valid.", zap.Int("total", report.Total))
		} else {
			logg.Warn("Invalid stored games detected", zap.Int("total", report.Total), zap.Int("issues", len(report.Issues)))
		}
	}

	return nil
}
