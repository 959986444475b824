// Package engine ties the calendar together: schedule resolution,
// occupancy grids, placement validation, the appointment lifecycle and
// blockages, on top of the store's optimistic-concurrency boundary.
// Callers (HTTP handlers, CLIs, report jobs) talk to the Engine only.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"slotnik/internal/cache"
	"slotnik/internal/clock"
	"slotnik/internal/grid"
	"slotnik/internal/lock"
	"slotnik/internal/metrics"
	"slotnik/internal/model"
	"slotnik/internal/notify"
	"slotnik/internal/schedule"
	"slotnik/internal/store"
	"slotnik/internal/validate"
)

var (
	// ErrLocked means another writer holds the resource-day lock; the
	// operation was not attempted and can be retried.
	ErrLocked = errors.New("resource day is busy")

	// ErrTerminalStatus means the appointment is in a terminal state and
	// cannot change anymore.
	ErrTerminalStatus = errors.New("appointment is in a terminal status")
)

// Store is everything the engine needs from persistence. *store.Store
// implements it.
type Store interface {
	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	ListActiveResources(ctx context.Context) ([]model.Resource, error)
	GetWeeklySchedule(ctx context.Context, resourceID int64) (model.WeeklySchedule, error)

	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	ListAppointments(ctx context.Context, resourceID int64, date time.Time) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	Reschedule(ctx context.Context, id, version int64, resourceID int64, date time.Time, start, duration int) error
	UpdateAppointmentStatus(ctx context.Context, id, version int64, status model.Status) error

	GetBlockage(ctx context.Context, id int64) (*model.Blockage, error)
	ListBlockages(ctx context.Context, resourceID int64, date time.Time) ([]model.Blockage, error)
	CreateBlockage(ctx context.Context, b *model.Blockage) error
	DeleteBlockage(ctx context.Context, id int64) error

	ListElapsedBlocking(ctx context.Context, now time.Time) ([]model.Appointment, error)
	TransitionStatus(ctx context.Context, id int64, from, to model.Status) (bool, error)
}

// Config tunes the engine's calendar rendering and locking.
type Config struct {
	// Granularity is the grid tick in minutes.
	Granularity int
	// FallbackOpen is the displayed day range when no resource is open.
	FallbackOpen model.Shift
	// LockTTL bounds how long a resource-day lock may be held.
	LockTTL time.Duration
}

// DefaultConfig displays 08:00-22:00 on 15-minute ticks.
func DefaultConfig() Config {
	return Config{
		Granularity:  grid.DefaultGranularity,
		FallbackOpen: model.Shift{Start: 480, End: 1320},
		LockTTL:      3 * time.Second,
	}
}

type Engine struct {
	cfg      Config
	store    Store
	locker   lock.Locker
	grids    *cache.GridCache
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// New wires an engine. locker, grids and notifier may be nil / no-op;
// now is injected for deterministic tests and defaults to time.Now.
func New(cfg Config, st Store, locker lock.Locker, grids *cache.GridCache,
	notifier notify.Notifier, logger zerolog.Logger, now func() time.Time) *Engine {
	if cfg.Granularity <= 0 {
		cfg.Granularity = DefaultConfig().Granularity
	}
	if cfg.FallbackOpen.End <= cfg.FallbackOpen.Start {
		cfg.FallbackOpen = DefaultConfig().FallbackOpen
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultConfig().LockTTL
	}
	if locker == nil {
		locker = lock.Noop{}
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:      cfg,
		store:    st,
		locker:   locker,
		grids:    grids,
		notifier: notifier,
		logger:   logger,
		now:      now,
	}
}

// openIntervals resolves the working windows of one resource on a date.
func (e *Engine) openIntervals(ctx context.Context, resourceID int64, date time.Time) ([]model.Shift, error) {
	ws, err := e.store.GetWeeklySchedule(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return schedule.OpenIntervals(ws, date)
}

// DayGrid renders the occupancy grid of one resource for one date. The
// display range is the union of the resource's shifts and the fallback.
func (e *Engine) DayGrid(ctx context.Context, resourceID int64, date time.Time) ([]grid.Slot, error) {
	if slots, ok := e.grids.Get(ctx, resourceID, date); ok {
		metrics.IncGridCacheHit()
		return slots, nil
	}
	metrics.IncGridCacheMiss()

	if _, err := e.store.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}
	open, err := e.openIntervals(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	bounds := schedule.DisplayRange([][]model.Shift{open}, e.cfg.FallbackOpen)

	slots, err := e.buildGrid(ctx, bounds, resourceID, date, open)
	if err != nil {
		return nil, err
	}
	e.grids.Set(ctx, resourceID, date, slots)
	return slots, nil
}

// ResourceDay is one column of the calendar view.
type ResourceDay struct {
	Resource model.Resource
	Slots    []grid.Slot
}

// CalendarRange renders grids for every active resource on a date over a
// shared display range, so the columns line up. Closed resources still
// get a column, fully outside hours.
func (e *Engine) CalendarRange(ctx context.Context, date time.Time) (model.Shift, []ResourceDay, error) {
	resources, err := e.store.ListActiveResources(ctx)
	if err != nil {
		return model.Shift{}, nil, err
	}

	opens := make([][]model.Shift, len(resources))
	for i, r := range resources {
		open, err := e.openIntervals(ctx, r.ID, date)
		if err != nil {
			return model.Shift{}, nil, fmt.Errorf("resource %d: %w", r.ID, err)
		}
		opens[i] = open
	}
	bounds := schedule.DisplayRange(opens, e.cfg.FallbackOpen)

	days := make([]ResourceDay, len(resources))
	for i, r := range resources {
		slots, err := e.buildGrid(ctx, bounds, r.ID, date, opens[i])
		if err != nil {
			return model.Shift{}, nil, fmt.Errorf("resource %d: %w", r.ID, err)
		}
		days[i] = ResourceDay{Resource: r, Slots: slots}
	}
	return bounds, days, nil
}

func (e *Engine) buildGrid(ctx context.Context, bounds model.Shift, resourceID int64,
	date time.Time, open []model.Shift) ([]grid.Slot, error) {
	appointments, err := e.store.ListAppointments(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	blockages, err := e.store.ListBlockages(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	slots := grid.Build(bounds, resourceID, date, open, appointments, blockages, e.cfg.Granularity)
	metrics.ObserveGridBuild(time.Since(started).Seconds())
	return slots, nil
}

// withDayLock runs fn under the resource-day lock. Lock errors degrade
// to running unlocked; the store transaction stays authoritative. A held
// lock surfaces as ErrLocked.
func (e *Engine) withDayLock(ctx context.Context, resourceID int64, date time.Time, fn func() error) error {
	key := lock.DayKey(resourceID, date)
	ok, err := e.locker.Acquire(ctx, key, e.cfg.LockTTL)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("day lock unavailable, proceeding unlocked")
		return fn()
	}
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrLocked)
	}
	defer func() {
		if err := e.locker.Release(ctx, key); err != nil {
			e.logger.Warn().Err(err).Str("key", key).Msg("day lock release failed")
		}
	}()
	return fn()
}

func (e *Engine) invalidate(ctx context.Context, resourceID int64, date time.Time) {
	e.grids.Invalidate(ctx, resourceID, date)
}

func (e *Engine) emit(ctx context.Context, ev notify.Event) {
	if err := e.notifier.Notify(ctx, ev); err != nil {
		e.logger.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("notify failed")
	}
}

// rejectReason maps a validation or write error to a metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, clock.ErrInvalidTimeFormat):
		return "invalid_time_format"
	case errors.Is(err, validate.ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, validate.ErrOutsideWorkingHours):
		return "outside_working_hours"
	case errors.Is(err, validate.ErrOverlapsAppointment):
		return "overlap"
	case errors.Is(err, store.ErrStaleWrite):
		return "stale_write"
	case errors.Is(err, store.ErrUnknownResource):
		return "unknown_resource"
	default:
		return "error"
	}
}
