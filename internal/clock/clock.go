// Package clock provides minute-resolution time arithmetic for the
// scheduling engine. Times of day are integer minutes since midnight in
// [0, 1440); interval ends may exceed 1440 when a duration pushes past
// midnight and are compared as-is, never wrapped.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// ErrInvalidTimeFormat is returned by Parse for malformed "HH:MM" strings.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// Parse converts an "HH:MM" string to minutes since midnight.
func Parse(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad hour", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad minute", ErrInvalidTimeFormat, s)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q: out of range", ErrInvalidTimeFormat, s)
	}

	return hour*60 + minute, nil
}

// MustParse is Parse for compile-time constants; panics on malformed input.
func MustParse(s string) int {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Format converts minutes since midnight to "HH:MM". Values past the end
// of the day keep counting (25:30), matching end-of-range comparisons.
func Format(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes advances t by d minutes. The result may exceed MinutesPerDay.
func AddMinutes(t, d int) int {
	return t + d
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Contains reports whether [outerStart, outerEnd) fully contains
// [innerStart, innerEnd).
func Contains(outerStart, outerEnd, innerStart, innerEnd int) bool {
	return outerStart <= innerStart && innerEnd <= outerEnd
}
