// Package ftp adapts github.com/jlaffaye/ftp to the upload.Transport
// interface. Each Connect dials, logs in, and returns a session that answers
// size queries and stores files. A 550 reply to SIZE is reported as
// services.ErrNotFound so the orchestrator can tell "absent" from "query
// failed".
package ftp
