package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
//
// These levels control what categories of output are shown, not just log
// severity. Example:
//
//	if logger.ShouldLogQueries(verbosity) {
//	    logger.Debugw("Executing query", "query", query)
//	}
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + progress, startup, connection status
	VerbosityDebug = 2 // -vv: + queries, timing, config details
	VerbosityTrace = 3 // -vvv: + full SPARQL result bindings
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
// Mapping:
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2+ (-vv)  -> DebugLevel (+ debug messages)
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

// LevelName returns a human-readable name for a verbosity level,
// used in startup output.
func LevelName(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "user"
	case VerbosityInfo:
		return "info (-v)"
	case VerbosityDebug:
		return "debug (-vv)"
	default:
		return "trace (-vvv)"
	}
}

// ShouldLogQueries returns true for verbosity >= 2 (-vv).
// Use this before logging full query text.
func ShouldLogQueries(verbosity int) bool {
	return verbosity >= VerbosityDebug
}

// ShouldLogTrace returns true for verbosity >= 3 (-vvv).
// Use this before dumping full result sets.
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}
