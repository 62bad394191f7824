// Package integration runs the sleep-alarm daemon end to end over its panel API.
package integration
