// Package schedule implements the durable alarm schedule store.
//
// The schedule is a YAML file with one block per day and a handful of global
// settings. Every setter writes the whole file atomically and fsyncs it
// before returning, so a decision taken by the trigger engine (clearing a
// cycle-aligned alarm, rewriting a snoozed wake time) survives a crash.
// A missing or corrupt file is regenerated from defaults when the store is
// opened.
package schedule
