// Package config defines the daemon and panel settings and provides
// helpers to load, validate and save them in YAML format.
//
// The alarm schedule itself (per-day wake times and tunables) lives in a
// separate file owned by the schedule repository; Config only points at it.
package config
