package output

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PipeTimestampLayout is the 23-character prefix of every profile log line.
const PipeTimestampLayout = "2006-01-02 15:04:05,000"

// PipeHandler writes records as "timestamp | LEVEL | message key=value".
// Line breaks inside a message are flattened so one record is one line.
type PipeHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	prefix string
	attrs  string
}

func NewPipeHandler(w io.Writer, opts *slog.HandlerOptions) *PipeHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PipeHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *PipeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PipeHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Format(PipeTimestampLayout))
	b.WriteString(" | ")
	b.WriteString(levelName(record.Level))
	b.WriteString(" | ")
	b.WriteString(flatten(record.Message))
	b.WriteString(h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, h.prefix, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PipeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, attr := range attrs {
		appendAttr(&b, h.prefix, attr)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

func (h *PipeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func appendAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			appendAttr(b, groupPrefix, member)
		}
		return
	}

	value := attr.Value.String()
	if strings.ContainsAny(value, " \t\r\n\"=") || value == "" {
		value = strconv.Quote(value)
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(value)
}

func flatten(message string) string {
	if !strings.ContainsAny(message, "\r\n") {
		return message
	}
	return strings.Join(strings.FieldsFunc(message, func(r rune) bool {
		return r == '\r' || r == '\n'
	}), " ")
}
