package logscan

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampSeparatorIndependent(t *testing.T) {
	tests := []struct {
		dot   string
		comma string
		want  time.Time
	}{
		{
			dot:   "2019-10-13 00:58:39.262 | INFO | x",
			comma: "2019-10-13 00:58:39,262 | INFO | x",
			want:  time.Date(2019, 10, 13, 0, 58, 39, 262_000_000, time.UTC),
		},
		{
			dot:   "2020-02-29 23:59:59.999",
			comma: "2020-02-29 23:59:59,999",
			want:  time.Date(2020, 2, 29, 23, 59, 59, 999_000_000, time.UTC),
		},
		{
			dot:   "2021-01-01 00:00:00.5",
			comma: "2021-01-01 00:00:00,5",
			want:  time.Date(2021, 1, 1, 0, 0, 0, 500_000_000, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.comma, func(t *testing.T) {
			fromDot, err := ParseTimestamp(tc.dot)
			require.NoError(t, err)
			fromComma, err := ParseTimestamp(tc.comma)
			require.NoError(t, err)

			assert.True(t, fromDot.Equal(fromComma))
			assert.True(t, tc.want.Equal(fromDot), "got %s", fromDot)
		})
	}
}

func TestParseTimestampRejectsMalformedPrefix(t *testing.T) {
	tests := []string{
		"",
		"2019-10-13 00:58:39",
		"2019-10-13 00:58:39 262 | INFO",
		"2019-13-13 00:58:39,262 | INFO",
		"2019-10-13T00:58:39,262 | INFO",
		"INFO | Downloading... 1/2",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			_, err := ParseTimestamp(line)
			require.Error(t, err)
			var parseErr *TimestampParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestParseTimestampUsesOnlyFixedPrefix(t *testing.T) {
	ts, err := ParseTimestamp("2019-10-13 00:58:39,2629999 trailing digits are outside the prefix")
	require.NoError(t, err)
	assert.Equal(t, 262_000_000, ts.Nanosecond())
}
