// Package validate decides whether a candidate appointment placement fits a
// resource's working hours without colliding with existing appointments.
// Validation is pure computation over an already-fetched snapshot; the store
// re-checks authoritatively at write time.
package validate

import (
	"errors"
	"fmt"
	"time"

	"slotnik/internal/clock"
	"slotnik/internal/model"
)

var (
	// ErrInvalidDuration rejects non-positive durations.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrOutsideWorkingHours rejects placements that do not fit entirely
	// inside a single shift.
	ErrOutsideWorkingHours = errors.New("outside working hours")

	// ErrOverlapsAppointment is the match target for ConflictError.
	ErrOverlapsAppointment = errors.New("overlaps an existing appointment")
)

// ConflictError reports the appointment a placement collides with, carrying
// enough detail for the UI to show who and when.
type ConflictError struct {
	AppointmentID int64
	CustomerName  string
	Start         int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlaps appointment %d (%s at %s)",
		e.AppointmentID, e.CustomerName, clock.Format(e.Start))
}

// Is makes errors.Is(err, ErrOverlapsAppointment) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrOverlapsAppointment
}

// Placement is a candidate appointment position: new, moved or resized.
type Placement struct {
	ResourceID int64
	Date       time.Time
	Start      int // minutes since midnight
	Duration   int // minutes
	// ExcludeAppointmentID skips the appointment itself when validating a
	// move or resize. Zero means nothing is excluded.
	ExcludeAppointmentID int64
}

// End returns the exclusive end minute of the placement.
func (p Placement) End() int {
	return p.Start + p.Duration
}

// ValidatePlacement checks, in order, short-circuiting on the first failure:
//
//  1. Duration is positive.
//  2. The placement fits entirely inside one open shift; spanning the gap
//     between two shifts is outside working hours.
//  3. No blocking-status appointment of the same resource and date overlaps
//     it, excluding the placement's own appointment when moving.
//
// A nil return means accept. When several appointments conflict, the one
// with the earliest start is reported. Blockage overlap is deliberately not
// checked here; see CheckBlockage.
func ValidatePlacement(open []model.Shift, appointments []model.Appointment, p Placement) error {
	if p.Duration <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, p.Duration)
	}

	inShift := false
	for _, sh := range open {
		if clock.Contains(sh.Start, sh.End, p.Start, p.End()) {
			inShift = true
			break
		}
	}
	if !inShift {
		return fmt.Errorf("%w: %s-%s", ErrOutsideWorkingHours,
			clock.Format(p.Start), clock.Format(p.End()))
	}

	var conflict *model.Appointment
	for i := range appointments {
		a := &appointments[i]
		if a.ResourceID != p.ResourceID || !a.SameDay(p.Date) || !a.Status.Blocks() {
			continue
		}
		if p.ExcludeAppointmentID != 0 && a.ID == p.ExcludeAppointmentID {
			continue
		}
		if !clock.Overlaps(p.Start, p.End(), a.Start, a.End()) {
			continue
		}
		if conflict == nil || a.Start < conflict.Start {
			conflict = a
		}
	}
	if conflict != nil {
		return &ConflictError{
			AppointmentID: conflict.ID,
			CustomerName:  conflict.CustomerName,
			Start:         conflict.Start,
		}
	}

	return nil
}

// CheckBlockage returns the earliest blockage overlapping the placement, or
// nil. Blockage conflicts are advisory: the UI warns, a staff member may
// deliberately book over one, so the validator never rejects on them.
func CheckBlockage(blockages []model.Blockage, p Placement) *model.Blockage {
	var hit *model.Blockage
	for i := range blockages {
		b := &blockages[i]
		if !b.AppliesTo(p.ResourceID) || !b.SameDay(p.Date) {
			continue
		}
		if !b.OverlapsInterval(p.Start, p.End()) {
			continue
		}
		if hit == nil || b.Start < hit.Start {
			hit = b
		}
	}
	return hit
}
