package model

import (
	"time"

	"slotnik/internal/clock"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending         Status = "pending"
	StatusPendingApproval Status = "pending_approval"
	StatusConfirmed       Status = "confirmed"
	StatusSeated          Status = "seated"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusNoShow          Status = "no_show"
	StatusDeleted         Status = "deleted"
)

// Terminal reports whether the status admits no further automatic transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusDeleted:
		return true
	}
	return false
}

// Blocks reports whether an appointment in this status occupies calendar
// time. Two blocking appointments of one resource must never overlap.
func (s Status) Blocks() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusConfirmed, StatusSeated:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s.Terminal() || s.Blocks()
}

// Appointment is a booked visit on one resource's calendar.
type Appointment struct {
	ID           int64     `json:"id"`
	PublicID     string    `json:"public_id"`
	ResourceID   int64     `json:"resource_id"`
	Date         time.Time `json:"date"`     // midnight of the appointment day
	Start        int       `json:"start"`    // minutes since midnight
	Duration     int       `json:"duration"` // minutes, > 0
	Status       Status    `json:"status"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// End returns the exclusive end minute (Start + Duration). May exceed the
// minutes of a day for appointments running past midnight.
func (a *Appointment) End() int {
	return a.Start + a.Duration
}

// EndsAt returns the absolute end instant of the appointment.
func (a *Appointment) EndsAt() time.Time {
	return a.Date.Add(time.Duration(a.End()) * time.Minute)
}

// Overlaps reports whether the time intervals of two appointments intersect.
// Both intervals are half-open; statuses are not consulted.
func (a *Appointment) Overlaps(other *Appointment) bool {
	if !a.Date.Equal(other.Date) {
		return false
	}
	return clock.Overlaps(a.Start, a.End(), other.Start, other.End())
}

// SameDay reports whether the appointment falls on the given date.
func (a *Appointment) SameDay(date time.Time) bool {
	y1, m1, d1 := a.Date.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
