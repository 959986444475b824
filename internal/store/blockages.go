package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"slotnik/internal/model"
)

// CreateBlockage inserts an unavailability window. A nil ResourceID makes
// it business-wide.
func (s *Store) CreateBlockage(ctx context.Context, b *model.Blockage) error {
	if b.End <= b.Start {
		return fmt.Errorf("create blockage: end %d <= start %d", b.End, b.Start)
	}
	if b.ResourceID != nil {
		tx, err := s.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("create blockage: begin tx: %w", err)
		}
		err = s.resourceExists(ctx, tx, *b.ResourceID)
		tx.Rollback()
		if err != nil {
			return err
		}
	}

	now := time.Now()
	if b.PublicID == "" {
		b.PublicID = uuid.NewString()
	}
	res, err := s.ExecContext(ctx, `
		INSERT INTO blockages (public_id, resource_id, date, start_min, end_min, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.PublicID, b.ResourceID, dateKey(b.Date), b.Start, b.End, b.Reason, now,
	)
	if err != nil {
		return fmt.Errorf("create blockage: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	b.CreatedAt = now
	return nil
}

// GetBlockage returns a blockage by id.
func (s *Store) GetBlockage(ctx context.Context, id int64) (*model.Blockage, error) {
	blockages, err := s.listBlockages(ctx, `
		SELECT id, public_id, resource_id, date, start_min, end_min, reason, created_at
		FROM blockages WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	if len(blockages) == 0 {
		return nil, fmt.Errorf("blockage %d: %w", id, ErrNotFound)
	}
	return &blockages[0], nil
}

// DeleteBlockage removes a blockage by id.
func (s *Store) DeleteBlockage(ctx context.Context, id int64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM blockages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete blockage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("blockage %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListBlockages returns the blockages affecting one resource on a date:
// its own plus business-wide ones, ordered by start.
func (s *Store) ListBlockages(ctx context.Context, resourceID int64, date time.Time) ([]model.Blockage, error) {
	return s.listBlockages(ctx, `
		SELECT id, public_id, resource_id, date, start_min, end_min, reason, created_at
		FROM blockages
		WHERE date = ? AND (resource_id IS NULL OR resource_id = ?)
		ORDER BY start_min, id`,
		dateKey(date), resourceID,
	)
}

// ListBlockagesByDate returns every blockage on a date.
func (s *Store) ListBlockagesByDate(ctx context.Context, date time.Time) ([]model.Blockage, error) {
	return s.listBlockages(ctx, `
		SELECT id, public_id, resource_id, date, start_min, end_min, reason, created_at
		FROM blockages WHERE date = ? ORDER BY start_min, id`,
		dateKey(date),
	)
}

func (s *Store) listBlockages(ctx context.Context, query string, args ...any) ([]model.Blockage, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blockages []model.Blockage
	for rows.Next() {
		var b model.Blockage
		var date string
		var resourceID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.PublicID, &resourceID, &date, &b.Start, &b.End, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		if resourceID.Valid {
			rid := resourceID.Int64
			b.ResourceID = &rid
		}
		if b.Date, err = parseDateKey(date); err != nil {
			return nil, fmt.Errorf("blockage %d: bad date: %w", b.ID, err)
		}
		blockages = append(blockages, b)
	}
	return blockages, rows.Err()
}
