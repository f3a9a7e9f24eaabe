// Package report renders stage durations and throughput curves as CSV.
package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jaa/sync-profiler/internal/stage"
	"github.com/jaa/sync-profiler/internal/throughput"
)

const (
	UnknownDuration = "Unknown"

	stageHeaderName       = "Stage"
	stageHeaderValue      = "Duration"
	throughputHeaderIndex = "Item nr"
	throughputHeaderValue = "Average duration per item (s)"
)

func StageDurations(w io.Writer, rows []stage.Duration) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{stageHeaderName, stageHeaderValue}); err != nil {
		return err
	}
	for _, row := range rows {
		value := UnknownDuration
		if row.Known {
			value = FormatFloat(row.Seconds)
		}
		if err := writer.Write([]string{row.Stage.String(), value}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func Throughput(w io.Writer, curve throughput.Curve) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{throughputHeaderIndex, throughputHeaderValue}); err != nil {
		return err
	}
	for _, point := range curve {
		if err := writer.Write([]string{strconv.Itoa(point.ItemIndex), FormatFloat(point.DurationPerItem)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatFloat renders the shortest representation that round-trips, always
// with a fractional part or exponent: 5 -> "5.0", 0.2 -> "0.2", 1e-05 -> "1e-05".
// Plain notation is used for decimal exponents in [-4, 16).
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	exp := decimalExponent(v)
	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	plain := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(plain, ".") {
		plain += ".0"
	}
	return plain
}

func decimalExponent(v float64) int {
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	idx := strings.LastIndexByte(sci, 'e')
	exp, err := strconv.Atoi(sci[idx+1:])
	if err != nil {
		return 0
	}
	return exp
}
