// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// tlmigrate applies (or verifies) the Timeline Store's schema migration
// against a SQLite database file. Unlike a legacy-format converter, this
// module has no prior on-disk representation to migrate from: the Timeline
// Store has owned a single SQLite schema since inception (spec §4.2/§6),
// tracked via PRAGMA user_version. tlmigrate exists so operators can run
// the store's idempotent schema upgrade as a standalone step ahead of a
// deploy, and so CI can assert a database file is already at the schema
// version the running binary expects.
//
// Usage:
//
//	tlmigrate --db timeline.db             apply the schema migration
//	tlmigrate --db timeline.db --verify-only   report the current version only
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ManuGH/xg2g/internal/store"
	"github.com/ManuGH/xg2g/internal/store/sqlite"
)

func main() {
	var dbPath string
	var verifyOnly bool

	flag.StringVar(&dbPath, "db", "", "path to the Timeline Store SQLite database")
	flag.BoolVar(&verifyOnly, "verify-only", false, "report the current schema version without migrating")
	flag.Parse()

	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --db is required")
		os.Exit(2)
	}

	if verifyOnly {
		version, err := currentSchemaVersion(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read schema version: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s: schema version %d (wanted %d)\n", dbPath, version, store.SchemaVersion)
		if version < store.SchemaVersion {
			os.Exit(1)
		}
		return
	}

	st, err := store.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	fmt.Printf("✓ %s migrated to schema version %d\n", dbPath, store.SchemaVersion)
}

// currentSchemaVersion reads PRAGMA user_version without running the
// migration, so --verify-only never writes to the database.
func currentSchemaVersion(dbPath string) (int, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	var version int
	err = db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version)
	return version, err
}
