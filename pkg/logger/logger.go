// Package logger configures the global zerolog logger for the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options selects the log level and output format.
type Options struct {
	Level  string
	Format string
}

// Setup configures the global logger to write to stderr. The auto format
// picks console output on a terminal and JSON otherwise.
func (o Options) Setup() error {
	return o.SetupWriter(os.Stderr)
}

// SetupWriter configures the global logger to write to w.
func (o Options) SetupWriter(w io.Writer) error {
	level := zerolog.InfoLevel
	if o.Level != "" {
		parsed, err := zerolog.ParseLevel(o.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", o.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	format := o.Format
	if format == "" || format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = FormatConsole
		}
	}

	switch format {
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	case FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q", o.Format)
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
