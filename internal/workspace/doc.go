// Package workspace binds an entry list file to a registry for one CLI
// session.
//
// Opening a workspace takes an exclusive flock on "<list>.lock" so a second
// stowaway process cannot edit the same list while an upload is writing
// results back. The lock is released by Close.
package workspace
