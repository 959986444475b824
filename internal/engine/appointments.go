package engine

import (
	"context"
	"fmt"
	"time"

	"slotnik/internal/clock"
	"slotnik/internal/metrics"
	"slotnik/internal/model"
	"slotnik/internal/notify"
	"slotnik/internal/validate"
)

// CreateRequest describes a new appointment. Start is wall-clock "HH:MM";
// an empty Status defaults to pending.
type CreateRequest struct {
	ResourceID   int64
	Date         time.Time
	Start        string
	Duration     int
	Status       model.Status
	CustomerID   int64
	CustomerName string
}

// CreateAppointment validates the placement against working hours and
// existing appointments, then persists it. The store re-checks overlap
// inside its transaction, so a race with another writer surfaces as
// store.ErrStaleWrite rather than a double booking.
func (e *Engine) CreateAppointment(ctx context.Context, req CreateRequest) (*model.Appointment, error) {
	start, err := clock.Parse(req.Start)
	if err != nil {
		metrics.IncPlacementRejected(rejectReason(err))
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	a := &model.Appointment{
		ResourceID:   req.ResourceID,
		Date:         req.Date,
		Start:        start,
		Duration:     req.Duration,
		Status:       status,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
	}

	err = e.withDayLock(ctx, req.ResourceID, req.Date, func() error {
		if err := e.validatePlacement(ctx, validate.Placement{
			ResourceID: req.ResourceID,
			Date:       req.Date,
			Start:      start,
			Duration:   req.Duration,
		}); err != nil {
			return err
		}
		return e.store.CreateAppointment(ctx, a)
	})
	if err != nil {
		metrics.IncPlacementRejected(rejectReason(err))
		return nil, err
	}

	metrics.IncPlacementAccepted("create")
	e.invalidate(ctx, a.ResourceID, a.Date)
	e.emit(ctx, notify.Event{Kind: notify.EventCreated, Appointment: *a})
	return a, nil
}

// MoveAppointment relocates an appointment to another resource, date or
// start time, keeping its duration. Validation excludes the appointment
// itself, so shifting within its own window is allowed.
func (e *Engine) MoveAppointment(ctx context.Context, id, version int64,
	resourceID int64, date time.Time, startHHMM string) (*model.Appointment, error) {

	start, err := clock.Parse(startHHMM)
	if err != nil {
		metrics.IncPlacementRejected(rejectReason(err))
		return nil, err
	}

	current, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("appointment %d (%s): %w", id, current.Status, ErrTerminalStatus)
	}

	err = e.withDayLock(ctx, resourceID, date, func() error {
		if err := e.validatePlacement(ctx, validate.Placement{
			ResourceID:           resourceID,
			Date:                 date,
			Start:                start,
			Duration:             current.Duration,
			ExcludeAppointmentID: id,
		}); err != nil {
			return err
		}
		return e.store.Reschedule(ctx, id, version, resourceID, date, start, current.Duration)
	})
	if err != nil {
		metrics.IncPlacementRejected(rejectReason(err))
		return nil, err
	}

	metrics.IncPlacementAccepted("move")
	e.invalidate(ctx, current.ResourceID, current.Date)
	e.invalidate(ctx, resourceID, date)

	moved, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, notify.Event{Kind: notify.EventMoved, Appointment: *moved, OldStatus: current.Status})
	return moved, nil
}

// ResizeAppointment changes only the duration, anchored at the same start.
func (e *Engine) ResizeAppointment(ctx context.Context, id, version int64, duration int) (*model.Appointment, error) {
	current, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("appointment %d (%s): %w", id, current.Status, ErrTerminalStatus)
	}

	err = e.withDayLock(ctx, current.ResourceID, current.Date, func() error {
		if err := e.validatePlacement(ctx, validate.Placement{
			ResourceID:           current.ResourceID,
			Date:                 current.Date,
			Start:                current.Start,
			Duration:             duration,
			ExcludeAppointmentID: id,
		}); err != nil {
			return err
		}
		return e.store.Reschedule(ctx, id, version, current.ResourceID, current.Date, current.Start, duration)
	})
	if err != nil {
		metrics.IncPlacementRejected(rejectReason(err))
		return nil, err
	}

	metrics.IncPlacementAccepted("resize")
	e.invalidate(ctx, current.ResourceID, current.Date)

	resized, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, notify.Event{Kind: notify.EventMoved, Appointment: *resized, OldStatus: current.Status})
	return resized, nil
}

// SetStatus applies an explicit status change: confirm, seat, complete,
// no-show or cancel. Terminal appointments are immutable.
func (e *Engine) SetStatus(ctx context.Context, id, version int64, to model.Status) (*model.Appointment, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown status %q", to)
	}
	current, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == to {
		return current, nil
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("appointment %d (%s): %w", id, current.Status, ErrTerminalStatus)
	}

	if err := e.store.UpdateAppointmentStatus(ctx, id, version, to); err != nil {
		return nil, err
	}

	e.invalidate(ctx, current.ResourceID, current.Date)

	updated, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	kind := notify.EventStatusChanged
	if to == model.StatusCancelled {
		kind = notify.EventCancelled
	}
	e.emit(ctx, notify.Event{Kind: kind, Appointment: *updated, OldStatus: current.Status})
	return updated, nil
}

// CancelAppointment is SetStatus(cancelled).
func (e *Engine) CancelAppointment(ctx context.Context, id, version int64) (*model.Appointment, error) {
	return e.SetStatus(ctx, id, version, model.StatusCancelled)
}

func (e *Engine) validatePlacement(ctx context.Context, p validate.Placement) error {
	open, err := e.openIntervals(ctx, p.ResourceID, p.Date)
	if err != nil {
		return err
	}
	appointments, err := e.store.ListAppointments(ctx, p.ResourceID, p.Date)
	if err != nil {
		return err
	}
	return validate.ValidatePlacement(open, appointments, p)
}
