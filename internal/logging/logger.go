package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const appName = "airsense"

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w. The text format is colourised for
// terminals; json is for log shippers.
func New(w io.Writer, format string, level slog.Level, version string) *slog.Logger {
	if format == FormatJSON {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
		return slog.New(h).With("app", appName, "version", version)
	}

	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		NoColor:    !isTerminal(w),
		AddSource:  level == slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h).With("app", appName)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
