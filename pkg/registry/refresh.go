package registry

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher reloads the tool catalog on a cron schedule so catalog changes on
// the backing servers are picked up without a manual reload.
type Refresher struct {
	registry *Registry
	cron     *cron.Cron
	timeout  time.Duration
}

// NewRefresher creates a refresher for the given registry.
// timeout bounds each background reload.
func NewRefresher(registry *Registry, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Refresher{
		registry: registry,
		cron:     cron.New(),
		timeout:  timeout,
	}
}

// Start schedules catalog reloads using a cron spec (e.g. "@every 30m")
func (rf *Refresher) Start(spec string) error {
	_, err := rf.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), rf.timeout)
		defer cancel()

		if _, err := rf.registry.Reload(ctx); err != nil {
			log.Warn().Err(err).Msg("Scheduled tool catalog reload failed")
			return
		}
		log.Debug().Msg("Tool catalog refreshed")
	})
	if err != nil {
		return err
	}

	rf.cron.Start()
	return nil
}

// Stop halts scheduled reloads
func (rf *Refresher) Stop() {
	rf.cron.Stop()
}
