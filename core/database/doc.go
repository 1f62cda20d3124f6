// Package database handles connections to the local game store and schema inspection.
//
// It wraps GORM and selects the dialector from the configured driver: sqlite for the
// on-device store and for tests, mysql for shared deployments.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for either dialect. feature/games uses it after
// migration to verify that every column the store relies on exists.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "game_records")
package database
