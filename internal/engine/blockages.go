package engine

import (
	"context"
	"time"

	"slotnik/internal/clock"
	"slotnik/internal/model"
	"slotnik/internal/validate"
)

// BlockageRequest describes an unavailability window. A nil ResourceID
// blocks every resource on the date.
type BlockageRequest struct {
	ResourceID *int64
	Date       time.Time
	Start      string
	End        string
	Reason     string
}

// CreateBlockage records an unavailability window. Blockages never
// conflict with appointments; they only shade the grid.
func (e *Engine) CreateBlockage(ctx context.Context, req BlockageRequest) (*model.Blockage, error) {
	start, err := clock.Parse(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := clock.Parse(req.End)
	if err != nil {
		return nil, err
	}

	b := &model.Blockage{
		ResourceID: req.ResourceID,
		Date:       req.Date,
		Start:      start,
		End:        end,
		Reason:     req.Reason,
	}
	if err := e.store.CreateBlockage(ctx, b); err != nil {
		return nil, err
	}

	e.invalidateBlockage(ctx, b)
	return b, nil
}

// DeleteBlockage removes an unavailability window.
func (e *Engine) DeleteBlockage(ctx context.Context, id int64) error {
	b, err := e.store.GetBlockage(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.DeleteBlockage(ctx, id); err != nil {
		return err
	}
	e.invalidateBlockage(ctx, b)
	return nil
}

// CheckBlockage reports whether a placement would sit on an
// unavailability window. Advisory only: the caller decides whether to
// warn or proceed, and a hit never fails validation.
func (e *Engine) CheckBlockage(ctx context.Context, resourceID int64, date time.Time,
	startHHMM string, duration int) (*model.Blockage, error) {

	start, err := clock.Parse(startHHMM)
	if err != nil {
		return nil, err
	}
	blockages, err := e.store.ListBlockages(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	return validate.CheckBlockage(blockages, validate.Placement{
		ResourceID: resourceID,
		Date:       date,
		Start:      start,
		Duration:   duration,
	}), nil
}

func (e *Engine) invalidateBlockage(ctx context.Context, b *model.Blockage) {
	if b.ResourceID != nil {
		e.invalidate(ctx, *b.ResourceID, b.Date)
		return
	}
	e.grids.InvalidateDate(ctx, b.Date)
}
