// Package logging sets up the process-wide zerolog logger: a colorized
// console writer for TTYs and a rotating file sink, grounded on
// bbak-mcs-mcp/internal/logging's Init.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Init.
type Options struct {
	// LogDir is the directory rotating log files are written under.
	LogDir string
	// Verbose sets the global level to Debug instead of Info.
	Verbose bool
}

// Init installs the global zerolog logger with a console writer and, when
// opts.LogDir is set, a rotating file writer, and returns the file writer so
// the caller can Close it on shutdown (nil when LogDir is empty).
func Init(opts Options) (*lumberjack.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return nil, err
		}
	}

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	var fileWriter *lumberjack.Logger
	var writer io.Writer = consoleWriter
	if opts.LogDir != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   opts.LogDir + "/buildseq.log",
			MaxSize:    16,
			MaxBackups: 32,
			MaxAge:     365,
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(consoleWriter, fileWriter)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return fileWriter, nil
}
