package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaa/sync-profiler/internal/stage"
	"github.com/jaa/sync-profiler/internal/throughput"
)

func TestStageDurations(t *testing.T) {
	var buf bytes.Buffer
	err := StageDurations(&buf, []stage.Duration{
		{Stage: stage.CompressingObjects},
		{Stage: stage.Downloading, Seconds: 5, Known: true},
		{Stage: stage.ProcessingObjects},
		{Stage: stage.Importing, Seconds: 10.25, Known: true},
	})
	require.NoError(t, err)

	want := "Stage,Duration\n" +
		"Compressing objects,Unknown\n" +
		"Downloading,5.0\n" +
		"Processing objects,Unknown\n" +
		"Importing,10.25\n"
	assert.Equal(t, want, buf.String())
}

func TestThroughput(t *testing.T) {
	var buf bytes.Buffer
	err := Throughput(&buf, throughput.Curve{
		{ItemIndex: 50, DurationPerItem: 0.2},
		{ItemIndex: 100, DurationPerItem: 0},
	})
	require.NoError(t, err)

	want := "Item nr,Average duration per item (s)\n" +
		"50,0.2\n" +
		"100,0.0\n"
	assert.Equal(t, want, buf.String())
}

func TestThroughputEmptyCurveWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Throughput(&buf, nil))
	assert.Equal(t, "Item nr,Average duration per item (s)\n", buf.String())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{5, "5.0"},
		{0.2, "0.2"},
		{10.5, "10.5"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{0.000123, "0.000123"},
		{0.0000123, "1.23e-05"},
		{3621.262, "3621.262"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{-2.5, "-2.5"},
		{1.0 / 3.0, "0.3333333333333333"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFloat(tc.in))
		})
	}
}
