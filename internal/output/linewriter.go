package output

import (
	"io"
	"os"
	"strings"
	"sync"
)

// LineWriter is an io.Writer that cuts a byte stream into lines at every "\n"
// or "\r" and hands each non-blank line to a sink. Spinner-style progress
// updates that rewrite the terminal line with "\r" therefore arrive as
// separate lines.
type LineWriter struct {
	sink func(line string) error

	mu  sync.Mutex
	buf []byte
}

func NewLineWriter(sink func(line string) error) *LineWriter {
	return &LineWriter{
		sink: sink,
		buf:  make([]byte, 0, 256),
	}
}

func SupportsInPlaceUpdates(dst io.Writer) bool {
	file, ok := dst.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range p {
		switch b {
		case '\n', '\r':
			if err := w.flushLineLocked(); err != nil {
				return 0, err
			}
		default:
			w.buf = append(w.buf, b)
		}
	}
	return len(p), nil
}

// Flush emits a trailing partial line, if any.
func (w *LineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLineLocked()
}

func (w *LineWriter) flushLineLocked() error {
	if len(w.buf) == 0 {
		return nil
	}

	line := strings.TrimRight(string(w.buf), " \t")
	w.buf = w.buf[:0]
	if strings.TrimSpace(line) == "" {
		return nil
	}
	return w.sink(line)
}
