// Package lifecycle advances appointment statuses over time: confirmed
// appointments whose window has elapsed complete, never-confirmed ones are
// marked no-shows. Evaluation is pure and idempotent; applying it goes
// through conditional store updates so concurrent sweeps converge.
package lifecycle

import (
	"time"

	"slotnik/internal/model"
)

// Transition is one required status change for an appointment.
// Appointment is the snapshot the plan was computed from, so appliers can
// reach the resource and date without another read.
type Transition struct {
	AppointmentID int64
	Appointment   model.Appointment
	From          model.Status
	To            model.Status
}

// Evaluate returns the status an appointment should transition to at the
// given instant, and whether any transition is required.
//
//   - confirmed and elapsed -> completed
//   - pending / pending_approval and elapsed -> no_show
//   - everything else, including seated and all terminal states, is left
//     alone; seated is only ever set by explicit user action.
func Evaluate(now time.Time, a *model.Appointment) (model.Status, bool) {
	if !a.EndsAt().Before(now) {
		return a.Status, false
	}

	switch a.Status {
	case model.StatusConfirmed:
		return model.StatusCompleted, true
	case model.StatusPending, model.StatusPendingApproval:
		return model.StatusNoShow, true
	}
	return a.Status, false
}

// Plan computes the batch of transitions a sweep at the given instant must
// apply. Pure; re-running with the same inputs yields the same plan, and an
// appointment already transitioned simply stops appearing in it.
func Plan(now time.Time, appointments []model.Appointment) []Transition {
	var out []Transition
	for i := range appointments {
		a := &appointments[i]
		if to, ok := Evaluate(now, a); ok {
			out = append(out, Transition{AppointmentID: a.ID, Appointment: *a, From: a.Status, To: to})
		}
	}
	return out
}
