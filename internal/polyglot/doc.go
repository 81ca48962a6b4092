// Package polyglot embeds a payload archive after the bytes of a host media
// file and recovers it later.
//
// An injected file is the unmodified host image or video followed by a
// single-entry zip archive. Media decoders stop at their own end marker and
// zip readers locate the archive from its trailing directory, so the output
// opens as both. Extraction finds the rightmost local-file-header signature
// and copies everything from there to the end of the file.
package polyglot
