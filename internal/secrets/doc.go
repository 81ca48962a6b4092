// Package secrets stores FTP credentials encrypted at rest for the local user.
//
// A 32-byte master key lives in a 0600 key file created on first use. The
// credential record is msgpack-encoded and sealed with NaCl secretbox under a
// key derived from the master with HKDF-SHA256. Anyone who can read the key
// file can read the credentials; the scheme only keeps the password out of
// plain-text config and backups that skip the key.
package secrets
