package validate

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotnik/internal/clock"
	"slotnik/internal/model"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// workdayShifts is Mon 09:00-18:00 as a single shift.
func workdayShifts() []model.Shift {
	return []model.Shift{{Start: clock.MustParse("09:00"), End: clock.MustParse("18:00")}}
}

func TestValidatePlacement_AcceptsFreeSlot(t *testing.T) {
	p := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("10:00"), Duration: 30}
	assert.NoError(t, ValidatePlacement(workdayShifts(), nil, p))
}

func TestValidatePlacement_InvalidDuration(t *testing.T) {
	for _, d := range []int{0, -15} {
		p := Placement{ResourceID: 1, Date: monday, Start: 600, Duration: d}
		err := ValidatePlacement(workdayShifts(), nil, p)
		assert.ErrorIs(t, err, ErrInvalidDuration, "duration %d", d)
	}
}

func TestValidatePlacement_OverlapRejected(t *testing.T) {
	// Scenario 1: appointment 10:00-11:00, candidate 10:30-11:00.
	existing := []model.Appointment{{
		ID: 5, ResourceID: 1, Date: monday,
		Start: clock.MustParse("10:00"), Duration: 60,
		Status: model.StatusConfirmed, CustomerName: "Dana Reyes",
	}}

	p := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("10:30"), Duration: 30}
	err := ValidatePlacement(workdayShifts(), existing, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverlapsAppointment)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(5), conflict.AppointmentID)
	assert.Equal(t, "Dana Reyes", conflict.CustomerName)
	assert.Equal(t, clock.MustParse("10:00"), conflict.Start)
}

func TestValidatePlacement_ShiftBoundary(t *testing.T) {
	// Scenario 2: 17:30+30min fits exactly; 17:31+30min does not.
	fits := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("17:30"), Duration: 30}
	assert.NoError(t, ValidatePlacement(workdayShifts(), nil, fits))

	over := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("17:31"), Duration: 30}
	assert.ErrorIs(t, ValidatePlacement(workdayShifts(), nil, over), ErrOutsideWorkingHours)
}

func TestValidatePlacement_MayNotSpanShiftGap(t *testing.T) {
	split := []model.Shift{
		{Start: clock.MustParse("09:00"), End: clock.MustParse("13:00")},
		{Start: clock.MustParse("14:00"), End: clock.MustParse("18:00")},
	}

	// 12:30-13:30 crosses the gap even though both ends are near open time.
	gap := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("12:30"), Duration: 60}
	assert.ErrorIs(t, ValidatePlacement(split, nil, gap), ErrOutsideWorkingHours)

	// Entirely inside the second shift is fine.
	inside := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("14:00"), Duration: 60}
	assert.NoError(t, ValidatePlacement(split, nil, inside))
}

func TestValidatePlacement_ClosedDay(t *testing.T) {
	p := Placement{ResourceID: 1, Date: monday, Start: 600, Duration: 30}
	assert.ErrorIs(t, ValidatePlacement(nil, nil, p), ErrOutsideWorkingHours)
}

func TestValidatePlacement_ExcludesSelfOnMove(t *testing.T) {
	existing := []model.Appointment{{
		ID: 9, ResourceID: 1, Date: monday,
		Start: clock.MustParse("10:00"), Duration: 60, Status: model.StatusConfirmed,
	}}

	// Resizing appointment 9 over its own interval must not self-conflict.
	p := Placement{
		ResourceID: 1, Date: monday,
		Start: clock.MustParse("10:00"), Duration: 90,
		ExcludeAppointmentID: 9,
	}
	assert.NoError(t, ValidatePlacement(workdayShifts(), existing, p))
}

func TestValidatePlacement_IgnoresNonBlockingStatuses(t *testing.T) {
	for _, status := range []model.Status{
		model.StatusCancelled, model.StatusDeleted, model.StatusCompleted, model.StatusNoShow,
	} {
		existing := []model.Appointment{{
			ID: 1, ResourceID: 1, Date: monday,
			Start: clock.MustParse("10:00"), Duration: 60, Status: status,
		}}
		p := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("10:00"), Duration: 60}
		assert.NoError(t, ValidatePlacement(workdayShifts(), existing, p), "status %s", status)
	}
}

func TestValidatePlacement_ReportsEarliestConflict(t *testing.T) {
	existing := []model.Appointment{
		{ID: 2, ResourceID: 1, Date: monday, Start: clock.MustParse("11:00"), Duration: 60,
			Status: model.StatusPending, CustomerName: "late"},
		{ID: 1, ResourceID: 1, Date: monday, Start: clock.MustParse("10:00"), Duration: 60,
			Status: model.StatusConfirmed, CustomerName: "early"},
	}

	// 10:30-11:30 overlaps both; the earliest start must be reported.
	p := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("10:30"), Duration: 60}
	err := ValidatePlacement(workdayShifts(), existing, p)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(1), conflict.AppointmentID)
	assert.Equal(t, "early", conflict.CustomerName)
}

func TestValidatePlacement_TouchingAppointmentsAccepted(t *testing.T) {
	existing := []model.Appointment{{
		ID: 1, ResourceID: 1, Date: monday,
		Start: clock.MustParse("10:00"), Duration: 60, Status: model.StatusConfirmed,
	}}

	before := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("09:30"), Duration: 30}
	assert.NoError(t, ValidatePlacement(workdayShifts(), existing, before))

	after := Placement{ResourceID: 1, Date: monday, Start: clock.MustParse("11:00"), Duration: 30}
	assert.NoError(t, ValidatePlacement(workdayShifts(), existing, after))
}

func TestCheckBlockage(t *testing.T) {
	rid := int64(1)
	blks := []model.Blockage{
		{ID: 2, ResourceID: &rid, Date: monday, Start: 660, End: 720, Reason: "lunch"},
		{ID: 1, Date: monday, Start: 600, End: 700, Reason: "inventory"},
	}

	// Overlapping both scoped and global: earliest start wins.
	p := Placement{ResourceID: 1, Date: monday, Start: 650, Duration: 60}
	hit := CheckBlockage(blks, p)
	require.NotNil(t, hit)
	assert.Equal(t, int64(1), hit.ID)

	// Another resource only sees the global blockage.
	p2 := Placement{ResourceID: 2, Date: monday, Start: 710, Duration: 30}
	assert.Nil(t, CheckBlockage(blks, p2))

	// Touching a blockage boundary is not a hit.
	p3 := Placement{ResourceID: 1, Date: monday, Start: 720, Duration: 30}
	assert.Nil(t, CheckBlockage(blks, p3))
}

// TestNoOverlapInvariant drives random create/move placements through the
// validator and asserts that the accepted set never contains an overlap.
func TestNoOverlapInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	shifts := workdayShifts()

	var accepted []model.Appointment
	nextID := int64(1)

	for i := 0; i < 500; i++ {
		start := clock.MustParse("09:00") + rng.Intn(36)*15
		duration := (1 + rng.Intn(8)) * 15

		if len(accepted) > 0 && rng.Intn(4) == 0 {
			// Move a random accepted appointment.
			idx := rng.Intn(len(accepted))
			p := Placement{
				ResourceID: 1, Date: monday, Start: start, Duration: duration,
				ExcludeAppointmentID: accepted[idx].ID,
			}
			if ValidatePlacement(shifts, accepted, p) == nil {
				accepted[idx].Start = start
				accepted[idx].Duration = duration
			}
		} else {
			p := Placement{ResourceID: 1, Date: monday, Start: start, Duration: duration}
			if ValidatePlacement(shifts, accepted, p) == nil {
				accepted = append(accepted, model.Appointment{
					ID: nextID, ResourceID: 1, Date: monday,
					Start: start, Duration: duration, Status: model.StatusConfirmed,
				})
				nextID++
			}
		}

		for a := 0; a < len(accepted); a++ {
			for b := a + 1; b < len(accepted); b++ {
				if accepted[a].Overlaps(&accepted[b]) {
					t.Fatalf("iteration %d: accepted appointments %d and %d overlap",
						i, accepted[a].ID, accepted[b].ID)
				}
			}
		}
	}

	require.NotEmpty(t, accepted, "the generator should accept at least one placement")
}
