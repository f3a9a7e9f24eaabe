package logscan

import (
	"fmt"
	"time"
)

// PrefixLength is the width of the timestamp at the start of every log line.
const PrefixLength = 23

// Layouts accepted for the prefix, in priority order. They differ only in the
// fractional-second separator.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05,999999",
}

const separatorOffset = len("2006-01-02 15:04:05")

type TimestampParseError struct {
	Prefix string
	Err    error
}

func (e *TimestampParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid timestamp prefix %q", e.Prefix)
	}
	return fmt.Sprintf("invalid timestamp prefix %q: %v", e.Prefix, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

func ParseTimestamp(line string) (time.Time, error) {
	prefix := line
	if len(prefix) > PrefixLength {
		prefix = prefix[:PrefixLength]
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		if len(prefix) <= separatorOffset || prefix[separatorOffset] != layout[separatorOffset] {
			continue
		}
		ts, err := time.Parse(layout, prefix)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, &TimestampParseError{Prefix: prefix, Err: lastErr}
}
