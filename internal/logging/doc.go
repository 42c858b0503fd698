// Package logging builds the application slog logger with console and JSON
// handlers and exposes attribute helpers shared across components.
package logging
