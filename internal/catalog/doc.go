// Package catalog holds the ordered list of media entries the CLI works on.
//
// Entries are addressed by zero-based position; each carries a 1-based
// Sequence that stays dense (1..N) after every structural change. A Registry
// is safe for concurrent use so an upload goroutine can record results while
// the caller reads. Freeze blocks structural edits for the duration of an
// upload; field writes remain allowed.
package catalog
