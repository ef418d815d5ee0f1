package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/metrics"
)

// SessionSweeper deletes expired sessions on a fixed interval. Verify
// already rejects them, so the sweep only bounds table growth.
type SessionSweeper struct {
	sessions Sweeper
	interval time.Duration

	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewSessionSweeper(sessions Sweeper, interval time.Duration, m *metrics.Metrics, logger *logger.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Run sweeps once immediately and then on every tick. A failed sweep is
// logged and retried on the next tick.
func (s *SessionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("session sweeper started")
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session sweeper stopped")
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	swept, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Err(err).Str("func", "*SessionSweeper.sweep").Msg("error sweeping expired sessions")
		}
		return
	}

	s.metrics.SessionsSwept(swept)
	if swept > 0 {
		s.logger.Debug().Int64("swept", swept).Msg("expired sessions removed")
	}
}
