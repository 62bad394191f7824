// Package panel implements the sleep-alarm-panel commands: remote button
// presses, status and schedule display, and setting changes, all over the
// daemon's gRPC API.
package panel
