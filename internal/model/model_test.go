package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestStatus_Terminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusCancelled, StatusNoShow, StatusDeleted}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "status %s should be terminal", s)
	}

	active := []Status{StatusPending, StatusPendingApproval, StatusConfirmed, StatusSeated}
	for _, s := range active {
		assert.False(t, s.Terminal(), "status %s should not be terminal", s)
	}
}

func TestStatus_Blocks(t *testing.T) {
	blocking := []Status{StatusPending, StatusPendingApproval, StatusConfirmed, StatusSeated}
	for _, s := range blocking {
		assert.True(t, s.Blocks(), "status %s should block", s)
	}

	nonBlocking := []Status{StatusCompleted, StatusCancelled, StatusNoShow, StatusDeleted}
	for _, s := range nonBlocking {
		assert.False(t, s.Blocks(), "status %s should not block", s)
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusDeleted.Valid())
	assert.False(t, Status("rescheduled").Valid())
	assert.False(t, Status("").Valid())
}

func TestAppointment_End(t *testing.T) {
	a := Appointment{Start: 600, Duration: 90}
	assert.Equal(t, 690, a.End())
}

func TestAppointment_EndsAt(t *testing.T) {
	a := Appointment{Date: date(2026, 3, 2), Start: 600, Duration: 60}
	assert.Equal(t, time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC), a.EndsAt())

	// Duration pushing past midnight carries into the next day.
	late := Appointment{Date: date(2026, 3, 2), Start: 1410, Duration: 60}
	assert.Equal(t, time.Date(2026, 3, 3, 0, 30, 0, 0, time.UTC), late.EndsAt())
}

func TestAppointment_Overlaps(t *testing.T) {
	existing := Appointment{Date: date(2026, 3, 2), Start: 600, Duration: 60}

	before := Appointment{Date: date(2026, 3, 2), Start: 540, Duration: 60}
	assert.False(t, existing.Overlaps(&before), "touching appointments do not overlap")

	after := Appointment{Date: date(2026, 3, 2), Start: 660, Duration: 30}
	assert.False(t, existing.Overlaps(&after))

	during := Appointment{Date: date(2026, 3, 2), Start: 630, Duration: 60}
	assert.True(t, existing.Overlaps(&during))

	otherDay := Appointment{Date: date(2026, 3, 3), Start: 600, Duration: 60}
	assert.False(t, existing.Overlaps(&otherDay))
}

func TestWeeklySchedule_Validate(t *testing.T) {
	ok := WeeklySchedule{
		time.Monday: {Working: true, Shifts: []Shift{{540, 780}, {840, 1080}}},
	}
	assert.NoError(t, ok.Validate())

	empty := Shift{Start: 600, End: 600}
	assert.Error(t, WeeklySchedule{time.Monday: {Working: true, Shifts: []Shift{empty}}}.Validate())

	overlapping := WeeklySchedule{
		time.Monday: {Working: true, Shifts: []Shift{{540, 800}, {780, 1080}}},
	}
	assert.Error(t, overlapping.Validate())

	unsorted := WeeklySchedule{
		time.Monday: {Working: true, Shifts: []Shift{{840, 1080}, {540, 780}}},
	}
	assert.Error(t, unsorted.Validate())
}

func TestBlockage_AppliesTo(t *testing.T) {
	global := Blockage{Date: date(2026, 3, 2), Start: 600, End: 660}
	assert.True(t, global.AppliesTo(1))
	assert.True(t, global.AppliesTo(42))

	rid := int64(1)
	scoped := Blockage{ResourceID: &rid, Date: date(2026, 3, 2), Start: 600, End: 660}
	assert.True(t, scoped.AppliesTo(1))
	assert.False(t, scoped.AppliesTo(2))
}

func TestBlockage_OverlapsInterval(t *testing.T) {
	b := Blockage{Start: 600, End: 660}
	assert.True(t, b.OverlapsInterval(630, 700))
	assert.False(t, b.OverlapsInterval(660, 720), "touching endpoint is not overlap")
	assert.False(t, b.OverlapsInterval(540, 600))
}
