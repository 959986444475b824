package engine

import (
	"context"

	"slotnik/internal/lifecycle"
	"slotnik/internal/metrics"
	"slotnik/internal/notify"
)

// Sweeper builds the periodic lifecycle sweeper bound to this engine:
// every applied transition bumps metrics, drops the affected day grid
// and emits a status-change event. The caller owns its goroutine.
func (e *Engine) Sweeper(cfg lifecycle.SweeperConfig) *lifecycle.Sweeper {
	return lifecycle.NewSweeper(cfg, e.store, e.now, e.sweepApplied, e.logger)
}

// RunSweep applies a single on-demand sweep: elapsed confirmed
// appointments complete, elapsed never-confirmed ones become no-shows.
func (e *Engine) RunSweep(ctx context.Context) ([]lifecycle.Transition, error) {
	return e.Sweeper(lifecycle.SweeperConfig{}).RunOnce(ctx)
}

func (e *Engine) sweepApplied(ctx context.Context, tr lifecycle.Transition) {
	metrics.IncSweepTransition(string(tr.To))
	e.invalidate(ctx, tr.Appointment.ResourceID, tr.Appointment.Date)

	a := tr.Appointment
	a.Status = tr.To
	e.emit(ctx, notify.Event{Kind: notify.EventStatusChanged, Appointment: a, OldStatus: tr.From})
}
