package util

import "log/slog"

// LogLevel picks the level for an operation outcome log line.
func LogLevel(err error) (lvl slog.Level) {
	switch err {
	case nil:
		lvl = slog.LevelDebug
	default:
		lvl = slog.LevelError
	}
	return
}
