package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"slotnik/internal/model"
)

// Store is the slice of persistence the sweeper needs.
type Store interface {
	// ListElapsedBlocking returns appointments in a blocking status whose
	// end instant lies before now.
	ListElapsedBlocking(ctx context.Context, now time.Time) ([]model.Appointment, error)
	// TransitionStatus applies a conditional status change ("update where
	// status = from"). It reports false when the row was already moved on,
	// which a concurrent sweep treats as a no-op.
	TransitionStatus(ctx context.Context, id int64, from, to model.Status) (bool, error)
}

// Applied is invoked after a transition has been persisted.
type Applied func(ctx context.Context, tr Transition)

// SweeperConfig holds configuration for the periodic sweep.
type SweeperConfig struct {
	// Interval is how often the sweep runs. Hourly is plenty; shorter
	// intervals are harmless because sweeps are idempotent.
	Interval time.Duration
}

// DefaultSweeperConfig returns the default sweep cadence.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{Interval: time.Hour}
}

// Sweeper periodically applies lifecycle transitions through the store.
// Safe to run from several processes at once: each write is conditional on
// the current status, so simultaneous sweeps converge.
type Sweeper struct {
	config  SweeperConfig
	store   Store
	now     func() time.Time
	applied Applied
	logger  zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewSweeper creates a sweeper. now is injected for deterministic tests;
// applied may be nil.
func NewSweeper(config SweeperConfig, store Store, now func() time.Time, applied Applied, logger zerolog.Logger) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		config:  config,
		store:   store,
		now:     now,
		applied: applied,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called. An immediate sweep runs before the first tick.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.config.Interval).Msg("lifecycle sweeper started")

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial sweep failed")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("lifecycle sweeper stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("lifecycle sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// Stop stops a running sweeper.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

// RunOnce performs a single sweep and returns the transitions it applied.
// Transitions lost to a concurrent sweep are skipped silently.
func (s *Sweeper) RunOnce(ctx context.Context) ([]Transition, error) {
	now := s.now()
	start := time.Now()

	elapsed, err := s.store.ListElapsedBlocking(ctx, now)
	if err != nil {
		return nil, err
	}

	plan := Plan(now, elapsed)
	var done []Transition
	for _, tr := range plan {
		select {
		case <-ctx.Done():
			return done, ctx.Err()
		default:
		}

		ok, err := s.store.TransitionStatus(ctx, tr.AppointmentID, tr.From, tr.To)
		if err != nil {
			s.logger.Error().Err(err).
				Int64("appointment_id", tr.AppointmentID).
				Str("to", string(tr.To)).
				Msg("transition failed")
			continue
		}
		if !ok {
			// Another sweep or an explicit user action got there first.
			continue
		}

		done = append(done, tr)
		if s.applied != nil {
			s.applied(ctx, tr)
		}
	}

	if len(plan) > 0 {
		s.logger.Info().
			Int("planned", len(plan)).
			Int("applied", len(done)).
			Dur("took", time.Since(start)).
			Msg("lifecycle sweep finished")
	}
	return done, nil
}
