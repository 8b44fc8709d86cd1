//go:build !mailbox_debug

package mailbox

import "log/slog"

// SetLogger sets the logger for the mailbox package.
// In release mode, this does nothing, but the signature must match to allow user code to compile.
func SetLogger(l *slog.Logger) {}

// Debug is a no-op in release mode.
func Debug(msg string, args ...any) {}

// Info is a no-op in release mode.
func Info(msg string, args ...any) {}

// Warn is a no-op in release mode.
func Warn(msg string, args ...any) {}
