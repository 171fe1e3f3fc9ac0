// Package database owns the SQLite file that backs the sound catalog and
// the playback history.
//
// Open applies the connection settings from the database section of the
// YAML (WAL journal, busy timeout, foreign keys). Migrate applies the
// schema files embedded by the top-level migrations package. Files follow
// the YYYYMMDD_HHMMSS_description.up.sql / .down.sql convention and are
// recorded in schema_migrations once applied.
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// All queries use parameters. The database file is created with mode 0600.
package database
