// Package notifications pushes batch and upload outcomes to ntfy.
//
// The topic comes from the [notifications] section of config.toml. Without a
// topic the service is a no-op, and each event class can be switched off
// independently. Callers depend only on the Service interface.
package notifications
