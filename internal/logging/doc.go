// Package logging builds the process-wide slog logger and provides typed
// attribute helpers so call sites stay terse.
package logging
