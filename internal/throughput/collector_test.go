package throughput

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProgress(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
		ok   bool
	}{
		{name: "spinner slash", line: "2019-10-13 00:58:39,262 | INFO | b'\\rDownloading... / 785109/1841502'", want: 785109, ok: true},
		{name: "spinner dash", line: "2019-10-13 00:56:54,432 | INFO | b'\\rDownloading... - 18127/1841502'", want: 18127, ok: true},
		{name: "plain", line: "Importing... 12/40", want: 12, ok: true},
		{name: "tab delimited", line: "Importing...\t7/40", want: 7, ok: true},
		{name: "zero parses", line: "Importing... 0/40", want: 0, ok: true},
		{name: "no slash", line: "Importing... 12 of 40", ok: false},
		{name: "no whitespace before count", line: "Importing...12/40", ok: false},
		{name: "not a number", line: "Importing... twelve/40", ok: false},
		{name: "spinner only", line: "Downloading... /", ok: false},
		{name: "empty", line: "", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractProgress(tc.line)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestIsValidSample(t *testing.T) {
	assert.False(t, IsValidSample(0))
	assert.False(t, IsValidSample(-3))
	assert.True(t, IsValidSample(1))
}

func TestCollectorKeepsEncounterOrder(t *testing.T) {
	base := time.Date(2019, 10, 13, 0, 0, 0, 0, time.UTC)
	collector := NewCollector(CollectorOptions{})

	assert.True(t, collector.Add("Downloading... - 10/100", base))
	assert.False(t, collector.Add("Downloading... - 0/100", base.Add(time.Second)))
	assert.False(t, collector.Add("Downloading... - bad/100", base.Add(2*time.Second)))
	assert.True(t, collector.Add("Downloading... - 5/100", base.Add(3*time.Second)))
	assert.True(t, collector.Add("Downloading... - 5/100", base.Add(4*time.Second)))

	samples := collector.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, []int{10, 5, 5}, []int{samples[0].Progress, samples[1].Progress, samples[2].Progress})
	assert.Equal(t, base.Add(3*time.Second), samples[1].Timestamp)
}

func TestCollectorDedupeRepeated(t *testing.T) {
	base := time.Date(2019, 10, 13, 0, 0, 0, 0, time.UTC)
	collector := NewCollector(CollectorOptions{DedupeRepeated: true})

	collector.Add("Downloading... / 10/100", base)
	collector.Add("Downloading... - 10/100", base.Add(time.Second))
	collector.Add("Downloading... \\ 20/100", base.Add(2*time.Second))
	collector.Add("Downloading... | 20/100", base.Add(3*time.Second))

	samples := collector.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{Progress: 10, Timestamp: base}, samples[0])
	assert.Equal(t, Sample{Progress: 20, Timestamp: base.Add(2 * time.Second)}, samples[1])
	assert.Equal(t, 2, collector.Len())
}
