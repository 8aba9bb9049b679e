package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/robfig/cron/v3"
)

const refreshTimeout = 2 * time.Minute

// Refresher is the part of Controller the warmer drives.
type Refresher interface {
	Refresh(ctx context.Context) (*Snapshot, error)
}

// Warmer reloads the snapshot on a cron schedule so requests rarely pay for
// a load.
type Warmer struct {
	cron *cron.Cron
	log  logger.Logger
}

// NewWarmer schedules r.Refresh using a standard five-field cron spec.
func NewWarmer(r Refresher, schedule string, log logger.Logger) (*Warmer, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	w := &Warmer{cron: c, log: log}
	if _, addErr := c.AddFunc(schedule, func() { w.run(r) }); addErr != nil {
		return nil, fmt.Errorf("schedule snapshot refresh %q: %w", schedule, addErr)
	}
	return w, nil
}

func (w *Warmer) run(r Refresher) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	s, err := r.Refresh(ctx)
	if err != nil {
		w.log.Error("Scheduled snapshot refresh failed", logger.Error(err))
		return
	}
	w.log.Debug("Scheduled snapshot refresh",
		logger.Int("cases", len(s.Cases)),
		logger.Duration("took", time.Since(start)),
	)
}

// Start runs the schedule in the background.
func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish or ctx
// to end.
func (w *Warmer) Stop(ctx context.Context) {
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
}
