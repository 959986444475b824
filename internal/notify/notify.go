// Package notify fans out appointment events to customer-facing
// channels. The engine emits events; delivery is throttled so a bulk
// sweep (dozens of no-shows at once) cannot flood a downstream
// SMS or email gateway.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"slotnik/internal/model"
)

// EventKind names what happened to an appointment.
type EventKind string

const (
	EventCreated       EventKind = "created"
	EventMoved         EventKind = "moved"
	EventCancelled     EventKind = "cancelled"
	EventStatusChanged EventKind = "status_changed"
)

// Event carries enough for a delivery channel to compose a message
// without another store round-trip.
type Event struct {
	Kind        EventKind
	Appointment model.Appointment
	OldStatus   model.Status
}

// Notifier delivers a single event. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Noop drops every event. The engine always has a notifier to call.
type Noop struct{}

func (Noop) Notify(ctx context.Context, ev Event) error { return nil }

// LogNotifier writes events to the structured log. Stands in for a
// real delivery channel in deployments without one.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) error {
	n.logger.Info().
		Str("kind", string(ev.Kind)).
		Str("public_id", ev.Appointment.PublicID).
		Str("status", string(ev.Appointment.Status)).
		Str("customer", ev.Appointment.CustomerName).
		Msg("appointment event")
	return nil
}
