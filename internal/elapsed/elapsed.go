// Package elapsed converts durations to fractional seconds.
package elapsed

import "time"

// Seconds returns d in seconds with a single rounding step, so a span such as
// 1.118s renders as 1.118. time.Duration.Seconds adds two separately rounded
// parts and can land one ulp away. Precision is one microsecond, the finest
// resolution a log timestamp carries.
func Seconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1e6
}

// Between returns the seconds from start to end.
func Between(start, end time.Time) float64 {
	return Seconds(end.Sub(start))
}
