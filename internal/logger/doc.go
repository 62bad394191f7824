// Package logger wraps zap for the alarm daemon and its tools.
//
// It keeps one global sugared logger with a console encoder and an atomic
// level, and lets services carry a scoped logger inside a context
// (ToContext/FromContext/WithName/WithKV) so every decision is logged with
// the component name and the keys that explain it.
package logger
