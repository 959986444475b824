package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"slotnik/internal/model"
)

// CreateResource inserts a resource and fills in its ID.
func (s *Store) CreateResource(ctx context.Context, r *model.Resource) error {
	now := time.Now()
	res, err := s.ExecContext(ctx,
		`INSERT INTO resources (name, color, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.Name, r.Color, r.Active, now, now,
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	r.ID, err = res.LastInsertId()
	r.CreatedAt = now
	r.UpdatedAt = now
	return err
}

// GetResource returns a resource by id.
func (s *Store) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	var r model.Resource
	err := s.QueryRowContext(ctx,
		`SELECT id, name, color, active, created_at, updated_at
		FROM resources WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Color, &r.Active, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resource %d: %w", id, ErrUnknownResource)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListActiveResources returns all active resources ordered by name.
func (s *Store) ListActiveResources(ctx context.Context) ([]model.Resource, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, name, color, active, created_at, updated_at
		FROM resources WHERE active = 1 ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		var r model.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.Color, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// SetDaySchedule replaces the working pattern for one weekday of a resource.
// Shift invariants are enforced here, at write time; readers trust them.
func (s *Store) SetDaySchedule(ctx context.Context, resourceID int64, day time.Weekday, ds model.DaySchedule) error {
	ws := model.WeeklySchedule{day: ds}
	if err := ws.Validate(); err != nil {
		return fmt.Errorf("set day schedule: %w", err)
	}
	if _, err := s.GetResource(ctx, resourceID); err != nil {
		return err
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set day schedule: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO weekly_schedules (resource_id, day_of_week, is_working, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(resource_id, day_of_week) DO UPDATE SET
			is_working = excluded.is_working,
			updated_at = excluded.updated_at`,
		resourceID, int(day), ds.Working, now, now,
	)
	if err != nil {
		return fmt.Errorf("set day schedule: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schedule_shifts WHERE resource_id = ? AND day_of_week = ?`,
		resourceID, int(day),
	); err != nil {
		return fmt.Errorf("set day schedule: clear shifts: %w", err)
	}

	for _, sh := range ds.Shifts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_shifts (resource_id, day_of_week, start_min, end_min)
			VALUES (?, ?, ?, ?)`,
			resourceID, int(day), sh.Start, sh.End,
		); err != nil {
			return fmt.Errorf("set day schedule: insert shift: %w", err)
		}
	}

	return tx.Commit()
}

// GetWeeklySchedule assembles the full weekly pattern of a resource. Days
// without an entry are absent from the map, which readers treat as closed.
func (s *Store) GetWeeklySchedule(ctx context.Context, resourceID int64) (model.WeeklySchedule, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT day_of_week, is_working FROM weekly_schedules WHERE resource_id = ?`,
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ws := make(model.WeeklySchedule)
	for rows.Next() {
		var day int
		var working bool
		if err := rows.Scan(&day, &working); err != nil {
			return nil, err
		}
		ws[time.Weekday(day)] = model.DaySchedule{Working: working}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shiftRows, err := s.QueryContext(ctx,
		`SELECT day_of_week, start_min, end_min FROM schedule_shifts
		WHERE resource_id = ? ORDER BY day_of_week, start_min`,
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer shiftRows.Close()

	for shiftRows.Next() {
		var day, start, end int
		if err := shiftRows.Scan(&day, &start, &end); err != nil {
			return nil, err
		}
		ds := ws[time.Weekday(day)]
		ds.Shifts = append(ds.Shifts, model.Shift{Start: start, End: end})
		ws[time.Weekday(day)] = ds
	}
	if err := shiftRows.Err(); err != nil {
		return nil, err
	}

	// Shifts arrive ordered by the query; keep the guarantee explicit.
	for day, ds := range ws {
		sort.Slice(ds.Shifts, func(i, j int) bool { return ds.Shifts[i].Start < ds.Shifts[j].Start })
		ws[day] = ds
	}
	return ws, nil
}
