// Package upload transfers produced polyglot files to an FTP server.
//
// An Orchestrator walks the requested entries in order over a single
// connection: it checks the local file, asks the server whether the remote
// name exists, consults a ConflictResolver when it does, then streams the file
// in fixed-size chunks. Cancellation is polled before each file and before
// each chunk. Every outcome is returned as data in a Result; nothing panics or
// errors past Upload.
//
// Launch runs an upload in the background against a catalog.Registry: it
// snapshots the selected entries, freezes the registry for the duration, and
// writes Uploaded back as files succeed.
package upload
