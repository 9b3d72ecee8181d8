// Package database provides SQLite connectivity for the address inventory.
//
// This package manages:
//   - Database connection with optional WAL mode
//   - Schema migrations embedded in the binary
//   - In-memory databases for tests and dry runs
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Inventory.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql and are
// additive only; there is no down path.
package database
