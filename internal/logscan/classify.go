// Package logscan recognises pipeline stage markers in profile log lines.
package logscan

import (
	"strings"
	"time"

	"github.com/jaa/sync-profiler/internal/stage"
)

// Rule maps a literal marker to the stage it announces.
type Rule struct {
	Identifier string
	Stage      stage.Stage
}

// DefaultRules are checked in order; the first marker found in a line wins.
var DefaultRules = []Rule{
	{Identifier: "Compressing objects...", Stage: stage.CompressingObjects},
	{Identifier: "Downloading...", Stage: stage.Downloading},
	{Identifier: "Processing objects:...", Stage: stage.ProcessingObjects},
	{Identifier: "Importing...", Stage: stage.Importing},
}

type Classification struct {
	Stage     stage.Stage
	Timestamp time.Time
}

type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: append([]Rule{}, rules...)}
}

// Stage returns the stage of the first rule whose marker occurs anywhere in line.
func (c *Classifier) Stage(line string) (stage.Stage, bool) {
	for _, rule := range c.rules {
		if strings.Contains(line, rule.Identifier) {
			return rule.Stage, true
		}
	}
	return stage.Initial, false
}

// Classify returns ok=false for lines without a marker; their timestamps are
// never parsed. A marker line with a malformed timestamp is an error.
func (c *Classifier) Classify(line string) (Classification, bool, error) {
	s, ok := c.Stage(line)
	if !ok {
		return Classification{}, false, nil
	}
	ts, err := ParseTimestamp(line)
	if err != nil {
		return Classification{}, false, err
	}
	return Classification{Stage: s, Timestamp: ts}, true, nil
}
