// Package services defines shared utilities consumed by the batch processor,
// the upload orchestrator, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, entry sequence numbers, and
//     operation names for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the consolidated report taxonomy (not found, transfer error, ...).
//
// Use these helpers when wiring new operations so failure reporting and
// observability stay uniform across inject, extract, and upload.
package services
