package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Options control where logs go and at which level.
type Options struct {
	// Debug enables debug level logging.
	Debug bool
	// File, if set, is opened in append mode and receives all log output.
	File string
	// Out is used when File is empty. Defaults to os.Stderr.
	Out io.Writer
}

// New builds a zerolog logger. Output goes through a ConsoleWriter with
// elapsed-time timestamps when it is a terminal or a log file meant for
// tail -f, and is plain JSON otherwise.
//
// The returned close function releases the log file, if one was opened.
func New(opts Options) (zerolog.Logger, func() error, error) {
	closer := func() error { return nil }

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		f, err := os.OpenFile(
			opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
		)
		if err != nil {
			return zerolog.Nop(), closer, errors.Wrapf(
				err, "failed to open log file %s", opts.File,
			)
		}
		out = f
		closer = f.Close
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var zl zerolog.Logger
	if opts.File != "" || isTerminal(out) {
		zl = zerolog.New(consoleWriter(out, time.Now()))
	} else {
		zl = zerolog.New(out)
	}
	zl = zl.Level(level).With().Timestamp().Logger()

	zl.Debug().Msg("debug logging enabled")

	return zl, closer, nil
}

// consoleWriter shows timestamps as time elapsed since start, which makes
// debounce and throttle intervals easy to read off a tailed log.
func consoleWriter(out io.Writer, start time.Time) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}
	w.FormatTimestamp = func(any) string {
		return "\x1b[90m" + formatElapsed(time.Since(start)) + "\x1b[0m"
	}

	return w
}

func formatElapsed(elapsed time.Duration) string {
	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60
	seconds := int(elapsed.Seconds()) % 60
	millis := int(elapsed.Milliseconds()) % 1000

	return fmt.Sprintf("[+%02d:%02d:%02d.%03d]",
		hours, minutes, seconds, millis)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
