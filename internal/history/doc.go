// Package history persists finished batch runs in a SQLite ledger so users can
// review what a past run converted and which files failed.
//
// The ledger is opt-in ([history] enabled) and lives at
// <state_dir>/history.db. Writes retry on SQLITE_BUSY with a short backoff so
// two runs in different directories can share the database. Only the most
// recent keep_runs runs are retained.
package history
