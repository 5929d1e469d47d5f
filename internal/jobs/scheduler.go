package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"vlogapp/api/internal/service"
)

// Scheduler runs the housekeeping that the request path never does: reset
// tokens that expired or were consumed just sit in the table otherwise.
type Scheduler struct {
	cron  *cron.Cron
	reset *service.ResetService
	log   zerolog.Logger
}

func NewScheduler(reset *service.ResetService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		reset: reset,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.purgeResetTokens); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.reset.PurgeStale(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reset token purge failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("stale reset tokens removed")
	}
}
