package common

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// logTimestampLayout is compiled once and reused by every layer logger.
var logTimestampLayout = mustCompileStrftime("%Y-%m-%d %H:%M:%S")

func mustCompileStrftime(pattern string) *strftime.Strftime {
	f, err := strftime.New(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

// timestampWriter prepends an strftime-formatted timestamp to every Write,
// letting charmbracelet/log's own ReportTimestamp stay off while log.txt
// still carries a wall-clock-sortable prefix per line.
type timestampWriter struct {
	w io.Writer
}

func (tw timestampWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(tw.w, logTimestampLayout.FormatString(time.Now())+" "); err != nil {
		return 0, err
	}
	return tw.w.Write(p)
}

// NewLayerLogger returns a prefixed logger for one of the four layers
// (radio, phy, tpoint, sim). All layers share one destination writer so a
// single log.txt (or stderr) interleaves every layer's events in
// wall-clock order.
func NewLayerLogger(w io.Writer, prefix string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(timestampWriter{w: w}, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          prefix,
	})
	return l
}

// OpenLogDestination opens log.txt under dir, truncating on each cold
// start. A failure here is a resource failure: the caller logs a warning
// and exits non-zero, it never panics.
func OpenLogDestination(dir string) (*os.File, error) {
	if dir == "" {
		return nil, nil
	}
	return os.OpenFile(dir+string(os.PathSeparator)+"log.txt", os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_TRUNC, 0o644)
}
