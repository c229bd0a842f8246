// Package logging configure le logger zerolog partagé par le serveur et la CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options configuration du logger
type Options struct {
	Level   string // trace, debug, info, warn, error
	Format  string // json, console, auto
	Output  string // stderr, stdout, discard ou chemin de fichier
	NoColor bool
}

// DefaultOptions valeurs par défaut
func DefaultOptions() Options {
	return Options{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// New crée un logger à partir des options.
// Un fichier de sortie impossible à ouvrir retombe sur stderr.
func New(opts Options) zerolog.Logger {
	output := openOutput(opts.Output)
	return NewWithWriter(opts, output)
}

// NewWithWriter crée un logger qui écrit dans w
func NewWithWriter(opts Options, w io.Writer) zerolog.Logger {
	level := ParseLevel(opts.Level)

	var writer io.Writer = w
	if useConsole(opts.Format, w) {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// ParseLevel convertit un niveau textuel, info par défaut
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func useConsole(format string, w io.Writer) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	case "json":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func openOutput(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stderr
	}
	return file
}
