package rlog

import (
	"bytes"
	"io"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// New returns a terminal logger writing to w. verbosity follows the geth scale (0=crit .. 5=trace)
func New(w io.Writer, verbosity int, color bool) log.Logger {
	return log.NewLogger(log.NewTerminalHandlerWithLevel(w, log.FromLegacyLevel(verbosity), color))
}

// Setup builds the logger and installs it as the process default
func Setup(w io.Writer, verbosity int, color bool) log.Logger {
	l := New(w, verbosity, color)
	log.SetDefault(l)
	return l
}

// Discard returns a logger that drops every record
func Discard() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

// LineWriter forwards every complete line written to it as a log record
type LineWriter struct {
	sync.Mutex
	logger log.Logger
	level  slog.Level
	msg    string
	buf    bytes.Buffer
}

// NewLineWriter returns a LineWriter that logs lines at lvl under msg
func NewLineWriter(logger log.Logger, lvl slog.Level, msg string) *LineWriter {
	return &LineWriter{
		logger: logger,
		level:  lvl,
		msg:    msg,
	}
}

func (lw *LineWriter) Write(bs []byte) (int, error) {
	lw.Lock()
	defer lw.Unlock()

	lw.buf.Write(bs)
	for {
		line, err := lw.buf.ReadBytes('\n')
		if err != nil {
			// keep the partial line for the next write
			lw.buf.Write(line)
			break
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 {
			lw.logger.Write(lw.level, lw.msg, "line", string(line))
		}
	}
	return len(bs), nil
}

// Flush logs a trailing partial line, if any
func (lw *LineWriter) Flush() {
	lw.Lock()
	defer lw.Unlock()

	if lw.buf.Len() > 0 {
		lw.logger.Write(lw.level, lw.msg, "line", lw.buf.String())
		lw.buf.Reset()
	}
}
