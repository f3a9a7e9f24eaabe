package stage

import (
	"log/slog"
	"time"

	"github.com/jaa/sync-profiler/internal/elapsed"
	"github.com/jaa/sync-profiler/internal/output"
)

type TimestampPair struct {
	First time.Time
	Last  time.Time
}

func (p TimestampPair) Duration() time.Duration {
	return p.Last.Sub(p.First)
}

// advance moves Last forward. Last never moves behind First.
func (p *TimestampPair) advance(ts time.Time) {
	if ts.After(p.Last) {
		p.Last = ts
	}
}

type Duration struct {
	Stage   Stage
	Seconds float64
	Known   bool
}

// Tracker is the stage state machine. It starts in Initial and has no terminal
// state. Every marker line extends the bracket of its own stage and, on the way
// out, the bracket of the stage that was active before it.
type Tracker struct {
	current Stage
	pairs   map[Stage]*TimestampPair
	logger  *slog.Logger
}

func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = output.NopLogger()
	}
	return &Tracker{
		current: Initial,
		pairs:   map[Stage]*TimestampPair{},
		logger:  logger,
	}
}

func (t *Tracker) Current() Stage {
	return t.current
}

func (t *Tracker) Observe(s Stage, ts time.Time) {
	if s == Initial {
		return
	}

	pair, ok := t.pairs[s]
	if !ok {
		pair = &TimestampPair{First: ts, Last: ts}
		t.pairs[s] = pair
	} else {
		pair.advance(ts)
	}

	if t.current != Initial {
		t.pairs[t.current].advance(ts)
	}

	if t.current != s {
		t.logger.Debug("stage transition", "from", t.current.String(), "to", s.String(), "at", ts)
	}
	t.current = s
}

func (t *Tracker) Pair(s Stage) (TimestampPair, bool) {
	pair, ok := t.pairs[s]
	if !ok {
		return TimestampPair{}, false
	}
	return *pair, true
}

// Report returns one row per reported stage in declared order. Stages that were
// never observed come back with Known=false.
func (t *Tracker) Report() []Duration {
	rows := make([]Duration, 0, len(Reported))
	for _, s := range Reported {
		pair, ok := t.pairs[s]
		if !ok {
			rows = append(rows, Duration{Stage: s})
			continue
		}
		rows = append(rows, Duration{Stage: s, Seconds: elapsed.Seconds(pair.Duration()), Known: true})
	}
	return rows
}
