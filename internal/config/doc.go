// Package config loads, normalizes, and validates stowaway configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STOWAWAY_FTP_HOST. The Config type centralizes every knob the CLI needs,
// allowing state/log directories, FTP transfer settings, and notification
// targets to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
