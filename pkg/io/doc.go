// Package io moves workflow payloads and rendered artifacts between the
// command line and the filesystem.
//
// Reads accept a file path, with "" or "-" meaning stdin, so captured
// payloads pipe straight into render commands:
//
//	agent export --run 42 | flowscope render -
//
// Writes mirror that convention: an empty path sends artifact bytes to
// stdout for shell composition, anything else becomes a file write.
//
// Errors carry flowscope error codes, so commands map them to user
// messages the same way the HTTP API does.
package io
