package export

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotnik/internal/model"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fakeCalendar struct {
	resources    []model.Resource
	appointments map[int64][]model.Appointment
	blockages    map[int64][]model.Blockage
}

func (f *fakeCalendar) ListActiveResources(ctx context.Context) ([]model.Resource, error) {
	return f.resources, nil
}

func (f *fakeCalendar) ListAppointments(ctx context.Context, resourceID int64, date time.Time) ([]model.Appointment, error) {
	return f.appointments[resourceID], nil
}

func (f *fakeCalendar) ListBlockages(ctx context.Context, resourceID int64, date time.Time) ([]model.Blockage, error) {
	return f.blockages[resourceID], nil
}

// fakeWriter records sheet-building calls instead of producing xlsx.
type fakeWriter struct {
	sheets  []string
	headers [][]string
	rows    map[string][][]interface{}
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{rows: make(map[string][][]interface{})}
}

func (f *fakeWriter) AddSheet(name string) error {
	f.sheets = append(f.sheets, name)
	return nil
}

func (f *fakeWriter) WriteHeader(columns []string) error {
	f.headers = append(f.headers, columns)
	return nil
}

func (f *fakeWriter) WriteRow(row []interface{}) error {
	current := f.sheets[len(f.sheets)-1]
	f.rows[current] = append(f.rows[current], row)
	return nil
}

func (f *fakeWriter) Save(w io.Writer) error { return nil }
func (f *fakeWriter) Close() error           { return nil }

func TestDayBookWrite(t *testing.T) {
	rid := int64(1)
	cal := &fakeCalendar{
		resources: []model.Resource{
			{ID: 1, Name: "Chair 1"},
			{ID: 2, Name: "Chair 2"},
		},
		appointments: map[int64][]model.Appointment{
			1: {
				{ID: 10, ResourceID: 1, Date: monday, Start: 720, Duration: 30, Status: model.StatusConfirmed, CustomerName: "Bob"},
				{ID: 11, ResourceID: 1, Date: monday, Start: 600, Duration: 60, Status: model.StatusPending, CustomerName: "Ann"},
				{ID: 12, ResourceID: 1, Date: monday, Start: 660, Duration: 30, Status: model.StatusDeleted, CustomerName: "Ghost"},
			},
		},
		blockages: map[int64][]model.Blockage{
			1: {{ID: 3, ResourceID: &rid, Date: monday, Start: 540, End: 570, Reason: "setup"}},
		},
	}

	fw := newFakeWriter()
	db := NewDayBook(cal)
	db.newWriter = func() ExcelWriter { return fw }

	var buf bytes.Buffer
	require.NoError(t, db.Write(context.Background(), monday, &buf))

	assert.Equal(t, []string{"Chair 1", "Chair 2"}, fw.sheets)
	require.Len(t, fw.headers, 2)
	assert.Equal(t, dayBookColumns, fw.headers[0])

	rows := fw.rows["Chair 1"]
	require.Len(t, rows, 3, "deleted appointments are omitted")

	// Start-ordered: blockage 09:00, Ann 10:00, Bob 12:00.
	assert.Equal(t, "09:00 - 09:30", rows[0][0])
	assert.Equal(t, "blocked", rows[0][2])
	assert.Equal(t, "setup", rows[0][4])
	assert.Equal(t, "Ann", rows[1][1])
	assert.Equal(t, "Bob", rows[2][1])

	assert.Empty(t, fw.rows["Chair 2"])
}

func TestDayBookProducesWorkbook(t *testing.T) {
	cal := &fakeCalendar{
		resources: []model.Resource{{ID: 1, Name: "Room"}},
		appointments: map[int64][]model.Appointment{
			1: {{ID: 10, ResourceID: 1, Date: monday, Start: 600, Duration: 60, Status: model.StatusConfirmed, CustomerName: "Ann"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewDayBook(cal).Write(context.Background(), monday, &buf))
	assert.NotZero(t, buf.Len())
}
