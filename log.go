package avcodec

import (
	"strings"

	"github.com/pion/logging"
)

const loggerScope = "avcodec"

// NewLoggerFactory returns a pion logger factory whose default level is the
// named one: trace, debug, info, warn, error or disabled. Unknown names map
// to warn.
func NewLoggerFactory(level string) logging.LoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = parseLogLevel(level)
	return f
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logging.LogLevelTrace
	case "debug":
		return logging.LogLevelDebug
	case "info":
		return logging.LogLevelInfo
	case "error":
		return logging.LogLevelError
	case "disabled", "quiet", "off":
		return logging.LogLevelDisabled
	default:
		return logging.LogLevelWarn
	}
}

func newLogger(f logging.LoggerFactory) logging.LeveledLogger {
	if f == nil {
		f = logging.NewDefaultLoggerFactory()
	}
	return f.NewLogger(loggerScope)
}
