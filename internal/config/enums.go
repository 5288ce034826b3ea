package config

import (
	"log/slog"

	"github.com/ultravioletrs/cube-docs/internal/foundation/normalization"
)

// Strictness decides what happens when a reference does not resolve.
type Strictness string

const (
	StrictnessThrow  Strictness = "throw"  // Halt the run
	StrictnessWarn   Strictness = "warn"   // Log a warning and continue
	StrictnessLog    Strictness = "log"    // Log at info level and continue
	StrictnessIgnore Strictness = "ignore" // Say nothing
)

// IsFatal reports whether a violation under this policy halts the run.
func (s Strictness) IsFatal() bool {
	return s == StrictnessThrow
}

// LogLevel returns the level a non-fatal violation is logged at. ok is
// false when the policy says nothing.
func (s Strictness) LogLevel() (level slog.Level, ok bool) {
	switch s {
	case StrictnessThrow:
		return slog.LevelError, true
	case StrictnessWarn:
		return slog.LevelWarn, true
	case StrictnessLog:
		return slog.LevelInfo, true
	default:
		return 0, false
	}
}

var strictnessNormalizer = normalization.NewNormalizer("strictness", map[string]Strictness{
	"throw":  StrictnessThrow,
	"warn":   StrictnessWarn,
	"log":    StrictnessLog,
	"ignore": StrictnessIgnore,
}, StrictnessThrow)

// RetryBackoffMode enumerates backoff strategies for retryable operations.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer("retry backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, RetryBackoffLinear)

var positionNormalizer = normalization.NewNormalizer("position", map[string]Position{
	"left":  PositionLeft,
	"right": PositionRight,
}, PositionLeft)

var navbarItemTypeNormalizer = normalization.NewNormalizer("navbar item type", map[string]NavbarItemType{
	"link":       NavbarItemLink,
	"doc":        NavbarItemDoc,
	"docsidebar": NavbarItemDocSidebar,
}, NavbarItemLink)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug": LogLevelDebug,
	"info":  LogLevelInfo,
	"warn":  LogLevelWarn,
	"error": LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw onto a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}
