// Package daemon runs the sleep-alarm process: it opens the schedule,
// builds the speaker, the aligner and the trigger engine, serves the panel
// gRPC API and the metrics endpoint, and drives the engine until shutdown.
package daemon
