// Package version exposes build metadata for the sleep-alarm binaries.
//
// Version, Commit and BuildTime may be injected with ldflags; Commit and
// BuildTime otherwise come from the VCS stamp Go embeds into the binary.
package version
