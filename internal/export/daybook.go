package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"slotnik/internal/clock"
	"slotnik/internal/model"
)

var dayBookColumns = []string{"Time", "Customer", "Status", "Duration (min)", "Note"}

// Calendar is the read surface the day book is rendered from.
// *store.Store implements it.
type Calendar interface {
	ListActiveResources(ctx context.Context) ([]model.Resource, error)
	ListAppointments(ctx context.Context, resourceID int64, date time.Time) ([]model.Appointment, error)
	ListBlockages(ctx context.Context, resourceID int64, date time.Time) ([]model.Blockage, error)
}

// DayBook renders one business day as an Excel workbook, one sheet per
// active resource.
type DayBook struct {
	cal       Calendar
	newWriter func() ExcelWriter
}

func NewDayBook(cal Calendar) *DayBook {
	return &DayBook{cal: cal, newWriter: NewExcelizeWriter}
}

// Write renders the workbook for a date into out. Deleted appointments
// are omitted; cancelled ones stay visible with their status.
func (d *DayBook) Write(ctx context.Context, date time.Time, out io.Writer) error {
	resources, err := d.cal.ListActiveResources(ctx)
	if err != nil {
		return fmt.Errorf("day book: %w", err)
	}

	w := d.newWriter()
	defer w.Close()

	for _, r := range resources {
		if err := d.writeSheet(ctx, w, r, date); err != nil {
			return fmt.Errorf("day book: resource %d: %w", r.ID, err)
		}
	}
	if err := w.Save(out); err != nil {
		return fmt.Errorf("day book: save: %w", err)
	}
	return nil
}

func (d *DayBook) writeSheet(ctx context.Context, w ExcelWriter, r model.Resource, date time.Time) error {
	appointments, err := d.cal.ListAppointments(ctx, r.ID, date)
	if err != nil {
		return err
	}
	blockages, err := d.cal.ListBlockages(ctx, r.ID, date)
	if err != nil {
		return err
	}

	if err := w.AddSheet(r.Name); err != nil {
		return err
	}
	if err := w.WriteHeader(dayBookColumns); err != nil {
		return err
	}

	rows := make([]bookRow, 0, len(appointments)+len(blockages))
	for _, a := range appointments {
		if a.Status == model.StatusDeleted {
			continue
		}
		rows = append(rows, bookRow{
			start: a.Start,
			cells: []interface{}{
				window(a.Start, a.End()),
				a.CustomerName,
				string(a.Status),
				a.Duration,
				"",
			},
		})
	}
	for _, b := range blockages {
		rows = append(rows, bookRow{
			start: b.Start,
			cells: []interface{}{
				window(b.Start, b.End),
				"",
				"blocked",
				b.End - b.Start,
				b.Reason,
			},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].start < rows[j].start })

	for _, row := range rows {
		if err := w.WriteRow(row.cells); err != nil {
			return err
		}
	}
	return nil
}

type bookRow struct {
	start int
	cells []interface{}
}

func window(start, end int) string {
	return clock.Format(start) + " - " + clock.Format(end)
}
