// Package throughput turns progress counters logged during streaming stages
// into an average time-per-item curve.
package throughput

import (
	"strconv"
	"strings"
	"time"
)

type Sample struct {
	Progress  int
	Timestamp time.Time
}

// ExtractProgress reads the count from the last "current/total" fragment of a
// line: the whitespace-delimited token right before the rightmost slash.
func ExtractProgress(line string) (int, bool) {
	slash := strings.LastIndexByte(line, '/')
	if slash < 0 {
		return 0, false
	}
	head := line[:slash]
	space := strings.LastIndexAny(head, " \t")
	if space < 0 {
		return 0, false
	}
	progress, err := strconv.Atoi(head[space+1:])
	if err != nil {
		return 0, false
	}
	return progress, true
}

// IsValidSample reports whether a parsed progress count is kept. A count of zero
// is dropped along with negative counts, so a "0/N" line never produces a sample.
func IsValidSample(progress int) bool {
	return progress > 0
}

type CollectorOptions struct {
	// DedupeRepeated drops a sample whose progress equals the previously
	// accepted one. The first occurrence is kept.
	DedupeRepeated bool
}

type Collector struct {
	opts    CollectorOptions
	samples []Sample
}

func NewCollector(opts CollectorOptions) *Collector {
	return &Collector{opts: opts}
}

// Add records a sample from line if it carries a usable progress count.
func (c *Collector) Add(line string, ts time.Time) bool {
	progress, ok := ExtractProgress(line)
	if !ok || !IsValidSample(progress) {
		return false
	}
	if c.opts.DedupeRepeated && len(c.samples) > 0 && c.samples[len(c.samples)-1].Progress == progress {
		return false
	}
	c.samples = append(c.samples, Sample{Progress: progress, Timestamp: ts})
	return true
}

func (c *Collector) Len() int {
	return len(c.samples)
}

func (c *Collector) Samples() []Sample {
	return append([]Sample{}, c.samples...)
}
