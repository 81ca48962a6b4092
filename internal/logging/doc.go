// Package logging builds the slog loggers used by the stowaway CLI and its
// internal packages.
//
// It owns the console and JSON handlers, level parsing, and file output under
// the configured log directory. Context helpers tag lines with the run, entry,
// and operation carried on a context so batch and upload code does not pass
// those fields by hand. NewNop serves tests and wiring code that cannot fail.
package logging
