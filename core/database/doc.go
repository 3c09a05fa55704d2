// Package database handles ledger database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL connections to the
// bank's movement ledger based on the application's configuration. A sqlite
// driver branch exists for tests and local fixtures.
//
// # Connect
//
// The Connect function establishes a connection to the database. It is
// agnostic to the ledger schema; the source catalog maps logical lookup
// fields (identifier, date, value) onto concrete column names.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema, used by the
// source connectivity check to verify that a configured ledger table exposes
// the mapped columns before a run starts.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "movements")
package database
