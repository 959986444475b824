package notify

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DispatcherConfig bounds outbound delivery throughput.
type DispatcherConfig struct {
	// Rate is events per second; Burst is how many may go out at once.
	Rate  float64
	Burst int
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Rate:  5.0,
		Burst: 10,
	}
}

// Dispatcher wraps a Notifier with a token bucket. Delivery errors are
// logged and swallowed: notification failure never fails the booking
// operation that triggered it.
type Dispatcher struct {
	next    Notifier
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewDispatcher(next Notifier, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.Rate <= 0 {
		cfg = DefaultDispatcherConfig()
	}
	return &Dispatcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		logger:  logger,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, ev Event) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := d.next.Notify(ctx, ev); err != nil {
		d.logger.Error().Err(err).
			Str("kind", string(ev.Kind)).
			Str("public_id", ev.Appointment.PublicID).
			Msg("notification delivery failed")
	}
	return nil
}
