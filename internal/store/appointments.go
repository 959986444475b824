package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"slotnik/internal/model"
)

const appointmentColumns = `id, public_id, resource_id, date, start_min, duration_min,
	status, customer_id, customer_name, version, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	var date string
	err := row.Scan(
		&a.ID, &a.PublicID, &a.ResourceID, &date, &a.Start, &a.Duration,
		&a.Status, &a.CustomerID, &a.CustomerName, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Date, err = parseDateKey(date)
	if err != nil {
		return nil, fmt.Errorf("appointment %d: bad date: %w", a.ID, err)
	}
	return &a, nil
}

// GetAppointment returns an appointment by id.
func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	row := s.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id,
	)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAppointments returns the appointments of one resource on a date,
// every status included, ordered by start time.
func (s *Store) ListAppointments(ctx context.Context, resourceID int64, date time.Time) ([]model.Appointment, error) {
	return s.listAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		WHERE resource_id = ? AND date = ? ORDER BY start_min, id`,
		resourceID, dateKey(date),
	)
}

// ListAppointmentsByDate returns every resource's appointments on a date.
func (s *Store) ListAppointmentsByDate(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	return s.listAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		WHERE date = ? ORDER BY resource_id, start_min, id`,
		dateKey(date),
	)
}

func (s *Store) listAppointments(ctx context.Context, query string, args ...any) ([]model.Appointment, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

// hasBlockingOverlap re-checks, inside a transaction, whether any
// blocking-status appointment of the resource/date overlaps [start, end),
// excluding excludeID (0 = none). This is the authoritative form of the
// validator's overlap check.
func hasBlockingOverlap(ctx context.Context, tx *sql.Tx, resourceID int64, date string, start, end int, excludeID int64) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE resource_id = ? AND date = ?
		AND status IN ('pending', 'pending_approval', 'confirmed', 'seated')
		AND id != ?
		AND start_min < ? AND start_min + duration_min > ?`,
		resourceID, date, excludeID, end, start,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) resourceExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE id = ? AND active = 1`, id,
	).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("resource %d: %w", id, ErrUnknownResource)
	}
	return nil
}

// CreateAppointment inserts an appointment after re-checking the no-overlap
// invariant inside the transaction. A placement that passed validation
// against a stale snapshot fails here with ErrStaleWrite.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a.Duration <= 0 {
		return fmt.Errorf("create appointment: non-positive duration %d", a.Duration)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("create appointment: invalid status %q", a.Status)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create appointment: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.resourceExists(ctx, tx, a.ResourceID); err != nil {
		return err
	}

	date := dateKey(a.Date)
	if a.Status.Blocks() {
		conflict, err := hasBlockingOverlap(ctx, tx, a.ResourceID, date, a.Start, a.End(), 0)
		if err != nil {
			return fmt.Errorf("create appointment: overlap check: %w", err)
		}
		if conflict {
			return fmt.Errorf("create appointment: %w", ErrStaleWrite)
		}
	}

	now := time.Now()
	if a.PublicID == "" {
		a.PublicID = uuid.NewString()
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO appointments (public_id, resource_id, date, start_min, duration_min,
			status, customer_id, customer_name, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		a.PublicID, a.ResourceID, date, a.Start, a.Duration,
		a.Status, a.CustomerID, a.CustomerName, now, now,
	)
	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	a.Version = 1
	a.CreatedAt = now
	a.UpdatedAt = now

	return tx.Commit()
}

// Reschedule moves or resizes an appointment: new resource, date, start or
// duration. version guards against concurrent edits and the overlap check
// excludes the appointment itself.
func (s *Store) Reschedule(ctx context.Context, id, version int64, resourceID int64, date time.Time, start, duration int) error {
	if duration <= 0 {
		return fmt.Errorf("reschedule: non-positive duration %d", duration)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reschedule: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.resourceExists(ctx, tx, resourceID); err != nil {
		return err
	}

	key := dateKey(date)
	conflict, err := hasBlockingOverlap(ctx, tx, resourceID, key, start, start+duration, id)
	if err != nil {
		return fmt.Errorf("reschedule: overlap check: %w", err)
	}
	if conflict {
		return fmt.Errorf("reschedule: %w", ErrStaleWrite)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET resource_id = ?, date = ?, start_min = ?, duration_min = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		resourceID, key, start, duration, time.Now(), id, version,
	)
	if err != nil {
		return fmt.Errorf("reschedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reschedule appointment %d: %w", id, ErrStaleWrite)
	}

	return tx.Commit()
}

// UpdateAppointmentStatus sets a new status guarded by version.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id, version int64, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("update status: invalid status %q", status)
	}

	res, err := s.ExecContext(ctx, `
		UPDATE appointments
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		status, time.Now(), id, version,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update status of appointment %d: %w", id, ErrStaleWrite)
	}
	return nil
}

// TransitionStatus applies a conditional status change used by the
// lifecycle sweep: the update lands only while the row still holds the
// expected status, so repeated or concurrent sweeps converge.
func (s *Store) TransitionStatus(ctx context.Context, id int64, from, to model.Status) (bool, error) {
	res, err := s.ExecContext(ctx, `
		UPDATE appointments
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, time.Now(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListElapsedBlocking returns appointments the lifecycle sweep may need to
// advance: still pending, pending_approval or confirmed, with an end
// instant strictly before now. Seated appointments are excluded; only an
// explicit user action moves them.
func (s *Store) ListElapsedBlocking(ctx context.Context, now time.Time) ([]model.Appointment, error) {
	return s.listAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE status IN ('pending', 'pending_approval', 'confirmed')
		AND datetime(date, '+' || (start_min + duration_min) || ' minutes') < datetime(?)
		ORDER BY date, start_min, id`,
		now.UTC().Format("2006-01-02 15:04:05"),
	)
}
