// Command stowaway manages a list of media files, embeds payload archives in
// them, extracts payloads back out, and uploads the results over FTP.
//
// Every subcommand operates on one list file (--list, or paths.list_file from
// config.toml). The list is locked for the duration of the command so two
// invocations never write it concurrently.
package main
