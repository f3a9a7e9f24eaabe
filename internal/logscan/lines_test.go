package logscan

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesSplitsOnAllLineEndings(t *testing.T) {
	input := "a\nb\r\nc\rd\n\ne"

	var got []string
	var numbers []int
	err := Lines(strings.NewReader(input), func(lineNo int, line string) error {
		numbers = append(numbers, lineNo)
		got = append(got, line)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "", "e"}, got)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, numbers)
}

func TestLinesTrailingCarriageReturn(t *testing.T) {
	var got []string
	err := Lines(strings.NewReader("only\r"), func(_ int, line string) error {
		got = append(got, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got)
}

func TestLinesStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := Lines(strings.NewReader("1\n2\n3\n"), func(lineNo int, _ string) error {
		calls++
		if lineNo == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}
