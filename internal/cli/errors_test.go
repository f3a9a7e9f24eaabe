package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jaa/sync-profiler/internal/exitcode"
)

func TestMapExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitcode.Success},
		{name: "coded", err: &ExitError{Code: exitcode.InvalidConfig, Err: errors.New("bad")}, want: exitcode.InvalidConfig},
		{name: "wrapped coded", err: fmt.Errorf("outer: %w", &ExitError{Code: exitcode.Interrupted, Err: errors.New("stop")}), want: exitcode.Interrupted},
		{name: "usage shown", err: withExitCode(exitcode.WrongArguments, errUsageShown), want: 1},
		{name: "unknown command", err: errors.New("unknown command \"x\" for \"syncprof\""), want: exitcode.InvalidUsage},
		{name: "generic", err: errors.New("boom"), want: exitcode.RuntimeFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapExitCode(tc.err); got != tc.want {
				t.Fatalf("mapExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}
