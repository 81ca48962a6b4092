// Package preflight provides the readiness checks behind "stowaway doctor".
//
// Checks cover the state and log directories, the optional output
// directory, the list file location, stored credentials, and FTP
// reachability. Each check returns a Result rather than an error so the CLI
// can render every outcome in one table.
package preflight
