// Package logging builds the zerolog logger used by the oasbind CLI and
// adapts it to parser.Logger so the library packages can log through it.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/erraggy/oasbind/parser"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a zerolog.Logger writing to w at the named level ("debug",
// "info", "warn", "error"). Text output is human readable; JSON output has
// one object per line.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: invalid level %q", level)
		}
		lvl = parsed
	}

	switch format {
	case "", FormatText:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("logging: invalid format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ZerologAdapter wraps a zerolog.Logger to implement parser.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a ZerologAdapter.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug implements parser.Logger.
func (z *ZerologAdapter) Debug(msg string, attrs ...any) {
	z.logger.Debug().Fields(attrs).Msg(msg)
}

// Info implements parser.Logger.
func (z *ZerologAdapter) Info(msg string, attrs ...any) {
	z.logger.Info().Fields(attrs).Msg(msg)
}

// Warn implements parser.Logger.
func (z *ZerologAdapter) Warn(msg string, attrs ...any) {
	z.logger.Warn().Fields(attrs).Msg(msg)
}

// Error implements parser.Logger.
func (z *ZerologAdapter) Error(msg string, attrs ...any) {
	z.logger.Error().Fields(attrs).Msg(msg)
}

// With implements parser.Logger.
func (z *ZerologAdapter) With(attrs ...any) parser.Logger {
	return &ZerologAdapter{logger: z.logger.With().Fields(attrs).Logger()}
}

// Zerolog returns the wrapped logger.
func (z *ZerologAdapter) Zerolog() zerolog.Logger {
	return z.logger
}

var _ parser.Logger = (*ZerologAdapter)(nil)
