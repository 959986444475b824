package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotnik/internal/model"
)

var today = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

func yesterdayAppt(status model.Status) model.Appointment {
	return model.Appointment{
		ID:       1,
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Start:    600, // 10:00
		Duration: 60,
		Status:   status,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		appt       model.Appointment
		now        time.Time
		expected   model.Status
		transition bool
	}{
		{
			name:       "confirmed elapsed completes",
			appt:       yesterdayAppt(model.StatusConfirmed),
			now:        today,
			expected:   model.StatusCompleted,
			transition: true,
		},
		{
			name:       "pending elapsed becomes no-show",
			appt:       yesterdayAppt(model.StatusPending),
			now:        today,
			expected:   model.StatusNoShow,
			transition: true,
		},
		{
			name:       "pending_approval elapsed becomes no-show",
			appt:       yesterdayAppt(model.StatusPendingApproval),
			now:        today,
			expected:   model.StatusNoShow,
			transition: true,
		},
		{
			name:       "seated is never advanced automatically",
			appt:       yesterdayAppt(model.StatusSeated),
			now:        today,
			expected:   model.StatusSeated,
			transition: false,
		},
		{
			name:       "terminal state untouched",
			appt:       yesterdayAppt(model.StatusCancelled),
			now:        today,
			expected:   model.StatusCancelled,
			transition: false,
		},
		{
			name:       "not yet elapsed untouched",
			appt:       yesterdayAppt(model.StatusConfirmed),
			now:        time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
			expected:   model.StatusConfirmed,
			transition: false,
		},
		{
			name:       "end exactly now is not yet elapsed",
			appt:       yesterdayAppt(model.StatusConfirmed),
			now:        time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
			expected:   model.StatusConfirmed,
			transition: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(tt.now, &tt.appt)
			assert.Equal(t, tt.transition, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPlan(t *testing.T) {
	appts := []model.Appointment{
		yesterdayAppt(model.StatusConfirmed),
		yesterdayAppt(model.StatusPending),
		yesterdayAppt(model.StatusCompleted),
	}
	appts[1].ID = 2
	appts[2].ID = 3

	plan := Plan(today, appts)
	require.Len(t, plan, 2)
	assert.Equal(t, Transition{AppointmentID: 1, Appointment: appts[0], From: model.StatusConfirmed, To: model.StatusCompleted}, plan[0])
	assert.Equal(t, Transition{AppointmentID: 2, Appointment: appts[1], From: model.StatusPending, To: model.StatusNoShow}, plan[1])
}

// memStore is an in-memory Store for sweeper tests. stale, when set, is
// served by ListElapsedBlocking instead of live data, simulating a snapshot
// that a concurrent writer has since invalidated.
type memStore struct {
	appts map[int64]*model.Appointment
	stale []model.Appointment
}

func newMemStore(appts ...model.Appointment) *memStore {
	m := &memStore{appts: make(map[int64]*model.Appointment)}
	for i := range appts {
		a := appts[i]
		m.appts[a.ID] = &a
	}
	return m
}

func (m *memStore) ListElapsedBlocking(_ context.Context, now time.Time) ([]model.Appointment, error) {
	if m.stale != nil {
		return m.stale, nil
	}
	var out []model.Appointment
	for _, a := range m.appts {
		if a.Status.Blocks() && a.EndsAt().Before(now) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) TransitionStatus(_ context.Context, id int64, from, to model.Status) (bool, error) {
	a, ok := m.appts[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	return true, nil
}

func TestSweeper_RunOnce(t *testing.T) {
	confirmed := yesterdayAppt(model.StatusConfirmed)
	pending := yesterdayAppt(model.StatusPending)
	pending.ID = 2
	upcoming := model.Appointment{
		ID: 3, Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Start: 600, Duration: 60, Status: model.StatusConfirmed,
	}

	store := newMemStore(confirmed, pending, upcoming)
	var notified []Transition
	s := NewSweeper(SweeperConfig{Interval: time.Hour}, store,
		func() time.Time { return today },
		func(_ context.Context, tr Transition) { notified = append(notified, tr) },
		zerolog.Nop())

	done, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.Len(t, notified, 2)

	assert.Equal(t, model.StatusCompleted, store.appts[1].Status)
	assert.Equal(t, model.StatusNoShow, store.appts[2].Status)
	assert.Equal(t, model.StatusConfirmed, store.appts[3].Status)
}

func TestSweeper_Idempotent(t *testing.T) {
	store := newMemStore(yesterdayAppt(model.StatusConfirmed))
	s := NewSweeper(SweeperConfig{}, store, func() time.Time { return today }, nil, zerolog.Nop())

	first, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second, "second sweep with the same now must be a no-op")
	assert.Equal(t, model.StatusCompleted, store.appts[1].Status)
}

func TestSweeper_SkipsLostRace(t *testing.T) {
	store := newMemStore(yesterdayAppt(model.StatusPending))
	s := NewSweeper(SweeperConfig{}, store, func() time.Time { return today }, nil, zerolog.Nop())

	// The snapshot still says pending, but an explicit user action has
	// cancelled the appointment underneath; the conditional write must skip.
	store.stale = []model.Appointment{yesterdayAppt(model.StatusPending)}
	store.appts[1].Status = model.StatusCancelled

	done, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, done)
	assert.Equal(t, model.StatusCancelled, store.appts[1].Status)
}
