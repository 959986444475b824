// Package sheets mirrors a day's appointments into a Google
// spreadsheet, for owners who run their front desk from Sheets. The
// mirror is one-way: slotnik overwrites the day's range on every sync.
package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"slotnik/internal/clock"
	"slotnik/internal/model"
)

var mirrorHeader = []interface{}{
	"Resource", "Start", "End", "Customer", "Status", "Booked at",
}

// MirrorService pushes day snapshots to one spreadsheet.
type MirrorService struct {
	srv           *sheets.Service
	spreadsheetID string
	logger        zerolog.Logger
}

// NewMirrorService builds a mirror using a service-account credentials
// file, the way the spreadsheet is shared with the service account.
func NewMirrorService(ctx context.Context, credentialsPath, spreadsheetID string, logger zerolog.Logger) (*MirrorService, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &MirrorService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// MirrorDay overwrites the date's tab with the current appointments.
// Cancelled and deleted appointments are left out; the mirror shows the
// day as it will actually run.
func (s *MirrorService) MirrorDay(ctx context.Context, date time.Time,
	resources []model.Resource, appointments []model.Appointment) error {

	names := make(map[int64]string, len(resources))
	for _, r := range resources {
		names[r.ID] = r.Name
	}

	values := [][]interface{}{mirrorHeader}
	for _, a := range filterActive(appointments) {
		values = append(values, appointmentRowValues(&a, names[a.ResourceID]))
	}

	tab := date.Format("2006-01-02")
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:F", tab)
	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}

	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, tab+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", tab, err)
	}

	s.logger.Info().Str("tab", tab).Int("rows", len(values)-1).Msg("day mirrored to sheets")
	return nil
}

// ensureTab adds a sheet named tab when the spreadsheet lacks it.
func (s *MirrorService) ensureTab(ctx context.Context, tab string) error {
	doc, err := s.srv.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			return nil
		}
	}

	_, err = s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", tab, err)
	}
	return nil
}

// filterActive drops appointments that no longer occupy the day.
func filterActive(appointments []model.Appointment) []model.Appointment {
	active := make([]model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		switch a.Status {
		case model.StatusCancelled, model.StatusDeleted:
			continue
		}
		active = append(active, a)
	}
	return active
}

func appointmentRowValues(a *model.Appointment, resourceName string) []interface{} {
	return []interface{}{
		resourceName,
		clock.Format(a.Start),
		clock.Format(a.End()),
		a.CustomerName,
		string(a.Status),
		a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
