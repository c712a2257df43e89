package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // no flags: results, warnings and errors only
	VerbosityInfo  = 1 // -v: + progress, timing, config sources
	VerbosityDebug = 2 // -vv: + per-object classification decisions
)

// VerbosityToLevel maps verbosity flags (-v, -vv) to zap log levels.
//
//	0 (none) -> WarnLevel
//	1 (-v)   -> InfoLevel
//	2+ (-vv) -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogDebug returns true for verbosity >= 2 (-vv).
func ShouldLogDebug(verbosity int) bool {
	return verbosity >= VerbosityDebug
}
