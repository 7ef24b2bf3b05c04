// Package storage provides SQLite-based persistence for chunk runs.
//
// A run is stored with the plan it was produced from and every text unit it
// emitted, so a downstream stage can page through units later without
// re-reading the corpus.
//
// # Database Schema
//
// Tables:
//   - runs: One row per run (language, directory, statistics)
//   - plan_entries: Chunk count per file, in plan order
//   - text_units: Sanitized units in output order with SHA-256 hashes
//   - schema_version: Applied migrations, compared as semantic versions
//
// Deleting a run cascades to its plan entries and units.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.corpuschunk/runs.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	run := &storage.Run{Language: "english", TextDir: "texts"}
//	if err := storage.Record(ctx, store, run, result.Plan, result.Units); err != nil {
//	    return err
//	}
//
//	units, err := store.ListUnits(ctx, run.ID, 0, 100)
//
// # Transactions
//
// Every Storage method is also available on a Tx. The connection pool holds
// a single connection, so code running inside a transaction must use the Tx
// rather than the parent store.
//
// # Build Tags
//
// The default build uses modernc.org/sqlite (no C compiler needed). Building
// with -tags sqlite_cgo switches to github.com/mattn/go-sqlite3.
package storage
