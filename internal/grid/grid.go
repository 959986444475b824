// Package grid discretizes a resource's day into fixed-size slots tagged
// free, reserved, blocked or outside working hours.
package grid

import (
	"sort"
	"time"

	"slotnik/internal/clock"
	"slotnik/internal/model"
)

// DefaultGranularity is the slot size in minutes when none is configured.
const DefaultGranularity = 15

// State classifies one slot of the occupancy grid.
type State string

const (
	StateOutsideHours State = "outside_hours"
	StateFree         State = "free"
	StateReserved     State = "reserved"
	StateBlocked      State = "blocked"
)

// Slot is one fixed-size time bucket for a resource on a date. Derived and
// ephemeral; never persisted.
type Slot struct {
	Start         int   `json:"start"` // minutes since midnight
	State         State `json:"state"`
	AppointmentID int64 `json:"appointment_id,omitempty"`
	BlockageID    int64 `json:"blockage_id,omitempty"`
	// Head marks the first slot of a reserved run. Rendering draws the
	// appointment block at the head and skips the covered slots.
	Head bool `json:"head,omitempty"`
}

// Build produces the ordered slot grid for one resource and date.
//
// bounds gives the display range [bounds.Start, bounds.End); open is the
// resource's resolved open intervals; appointments and blockages are the
// day's records for that resource (blockages may include business-wide ones).
// Slot state priority is fixed and total: outside_hours > reserved > blocked
// > free, so the result is deterministic regardless of input order.
func Build(bounds model.Shift, resourceID int64, date time.Time, open []model.Shift,
	appointments []model.Appointment, blockages []model.Blockage, granularity int) []Slot {

	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	occupying := make([]model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.ResourceID == resourceID && a.SameDay(date) && a.Status.Blocks() {
			occupying = append(occupying, a)
		}
	}
	// Earliest start wins a tick; with the no-overlap invariant held only one
	// candidate exists, but the sort keeps the output total anyway.
	sort.Slice(occupying, func(i, j int) bool {
		if occupying[i].Start != occupying[j].Start {
			return occupying[i].Start < occupying[j].Start
		}
		return occupying[i].ID < occupying[j].ID
	})

	applicable := make([]model.Blockage, 0, len(blockages))
	for _, b := range blockages {
		if b.AppliesTo(resourceID) && b.SameDay(date) {
			applicable = append(applicable, b)
		}
	}
	sort.Slice(applicable, func(i, j int) bool {
		if applicable[i].Start != applicable[j].Start {
			return applicable[i].Start < applicable[j].Start
		}
		return applicable[i].ID < applicable[j].ID
	})

	var slots []Slot
	var prevAppt int64
	for t := bounds.Start; t < bounds.End; t += granularity {
		slot := Slot{Start: t, State: StateFree}

		if !withinAny(open, t) {
			slot.State = StateOutsideHours
		} else if a := reservedBy(occupying, t); a != nil {
			slot.State = StateReserved
			slot.AppointmentID = a.ID
			slot.Head = a.ID != prevAppt
		} else if b := blockedBy(applicable, t); b != nil {
			slot.State = StateBlocked
			slot.BlockageID = b.ID
		}

		if slot.State == StateReserved {
			prevAppt = slot.AppointmentID
		} else {
			prevAppt = 0
		}
		slots = append(slots, slot)
	}

	return slots
}

// BlockHeight returns how many grid units an appointment of the given
// duration occupies when rendered from its head slot.
func BlockHeight(duration, granularity int) int {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	return (duration + granularity - 1) / granularity
}

func withinAny(open []model.Shift, t int) bool {
	for _, sh := range open {
		if t >= sh.Start && t < sh.End {
			return true
		}
	}
	return false
}

func reservedBy(appointments []model.Appointment, t int) *model.Appointment {
	for i := range appointments {
		a := &appointments[i]
		if clock.Overlaps(a.Start, a.End(), t, t+1) {
			return a
		}
	}
	return nil
}

func blockedBy(blockages []model.Blockage, t int) *model.Blockage {
	for i := range blockages {
		b := &blockages[i]
		if clock.Overlaps(b.Start, b.End, t, t+1) {
			return b
		}
	}
	return nil
}
