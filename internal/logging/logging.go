package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level controls log verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

type Config struct {
	Level  Level
	Output io.Writer // defaults to stderr
}

// Logger is the leveled logger handed around the build pipeline. It is a
// thin facade over zerolog so call sites stay printf-shaped.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(c Config) *Logger {
	out := c.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		log: zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
			Level(zerologLevel(c.Level)).
			With().Timestamp().Logger(),
	}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{log: l.log.With().Interface(key, value).Logger()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (l *Logger) DebugEnabled() bool {
	return l.log.GetLevel() <= zerolog.DebugLevel
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
