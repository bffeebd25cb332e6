// Package logging builds the slog loggers used across omzet and defines the
// standardized attribute keys components log with.
//
// Two handler formats exist: a human-oriented console format used when the
// daemon runs in a terminal, and JSON for machine consumption. Construct
// loggers through New or NewFromConfig so every component shares the same
// level parsing and output fan-out.
package logging
