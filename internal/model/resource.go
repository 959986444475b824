package model

import (
	"fmt"
	"time"
)

// Resource is a bookable staff member, room or piece of equipment.
type Resource struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shift is one contiguous working interval, in minutes since midnight.
// End is exclusive and must be greater than Start.
type Shift struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DaySchedule is the working pattern for one weekday.
type DaySchedule struct {
	Working bool    `json:"working"`
	Shifts  []Shift `json:"shifts"`
}

// WeeklySchedule maps weekdays (time.Sunday..time.Saturday) to day schedules.
// Days without an entry are closed. Shifts per day are sorted ascending and
// never overlap; that invariant is enforced at write time.
type WeeklySchedule map[time.Weekday]DaySchedule

// Validate checks the per-day shift invariants: positive-length shifts,
// sorted ascending, non-overlapping. A violation means corrupted data.
func (ws WeeklySchedule) Validate() error {
	for day, ds := range ws {
		for i, sh := range ds.Shifts {
			if sh.End <= sh.Start {
				return fmt.Errorf("weekday %d shift %d: end %d <= start %d", day, i, sh.End, sh.Start)
			}
			if i > 0 && sh.Start < ds.Shifts[i-1].End {
				return fmt.Errorf("weekday %d shift %d: overlaps or unsorted against previous", day, i)
			}
		}
	}
	return nil
}
