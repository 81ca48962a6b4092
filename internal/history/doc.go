// Package history journals upload attempts in SQLite.
//
// Every file an upload run resolves (uploaded, skipped, failed, or cancelled)
// becomes one row, grouped by run ID. The CLI's history command reads it back.
// The schema is versioned; a mismatched database must be deleted rather than
// migrated.
package history
