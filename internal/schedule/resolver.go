// Package schedule resolves weekly working patterns into the concrete open
// intervals of a calendar date.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"slotnik/internal/model"
)

// ErrCorruptSchedule signals a weekly schedule that violates its own
// invariants (overlapping or unsorted shifts). This is corrupted input
// data, not a business rejection.
var ErrCorruptSchedule = errors.New("corrupt weekly schedule")

// OpenIntervals returns the ordered open shifts of a resource for the given
// date. A closed day or a day without an entry yields an empty list.
func OpenIntervals(ws model.WeeklySchedule, date time.Time) ([]model.Shift, error) {
	day, ok := ws[date.Weekday()]
	if !ok || !day.Working || len(day.Shifts) == 0 {
		return nil, nil
	}

	for i, sh := range day.Shifts {
		if sh.End <= sh.Start {
			return nil, fmt.Errorf("%w: weekday %d shift %d has end %d <= start %d",
				ErrCorruptSchedule, date.Weekday(), i, sh.End, sh.Start)
		}
		if i > 0 && sh.Start < day.Shifts[i-1].End {
			return nil, fmt.Errorf("%w: weekday %d shifts %d and %d overlap",
				ErrCorruptSchedule, date.Weekday(), i-1, i)
		}
	}

	out := make([]model.Shift, len(day.Shifts))
	copy(out, day.Shifts)
	return out, nil
}

// DisplayRange computes the vertical bounds of a rendered calendar: the union
// min(start) and max(end) across every resource's open intervals for the
// visible day. When no resource is open it returns the configured fallback
// range. This drives display bounds only, not individual availability.
func DisplayRange(perResource [][]model.Shift, fallback model.Shift) model.Shift {
	found := false
	bounds := model.Shift{}

	for _, shifts := range perResource {
		for _, sh := range shifts {
			if !found {
				bounds = sh
				found = true
				continue
			}
			if sh.Start < bounds.Start {
				bounds.Start = sh.Start
			}
			if sh.End > bounds.End {
				bounds.End = sh.End
			}
		}
	}

	if !found {
		return fallback
	}
	return bounds
}
