package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// Setup builds the root Logging. format is "terminal" or "json".
func Setup(output io.Writer, level zerolog.Level, format string, forceColor bool) *Logging {
	if format == "terminal" {
		useColor := forceColor
		if !useColor {
			if f, ok := output.(*os.File); ok {
				useColor = isatty.IsTerminal(f.Fd())
			}
		}

		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339Nano,
			NoColor:    !useColor,
		}
	}

	z := zerolog.New(output).With().Timestamp()

	if level <= zerolog.DebugLevel {
		z = z.Caller().Stack()
	}

	return NewLogging(nil).SetLogger(z.Logger().Level(level))
}

// Output opens f for appending; writes go through a non-blocking diode.
func Output(f string) (io.Writer, error) {
	out, err := os.OpenFile(filepath.Clean(f), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644) // nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file, %q", f)
	}

	return diode.NewWriter(out, 1000, 0, nil), nil
}

func Outputs(files []string) (io.Writer, error) {
	if len(files) < 1 {
		return nil, errors.Errorf("empty log files")
	}

	ws := make([]io.Writer, len(files))
	for i, f := range files {
		out, err := Output(f)
		if err != nil {
			return nil, err
		}

		ws[i] = out
	}

	return zerolog.MultiLevelWriter(ws...), nil
}

func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(s)
	if len(s) < 1 {
		return zerolog.InfoLevel, nil
	}

	l, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level, %q", s)
	}

	return l, nil
}

func ParseFormat(s string) (string, error) {
	switch s = strings.TrimSpace(strings.ToLower(s)); s {
	case "", "terminal":
		return "terminal", nil
	case "json":
		return "json", nil
	default:
		return "", errors.Errorf("unknown log format, %q", s)
	}
}
