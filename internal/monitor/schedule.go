package monitor

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// runCron drives cycles from a cron expression instead of a fixed ticker.
// SkipIfStillRunning keeps cycles strictly sequential even when a cycle
// outlasts the schedule.
func (m *Monitor) runCron(ctx context.Context) error {
	log.Printf("[monitor] watching @%s on schedule %q", m.cfg.Account.Handle, m.cfg.Poll.Schedule)

	cycleErr := make(chan error, 1)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(m.cfg.Poll.Schedule, func() {
		if _, err := m.Cycle(ctx); err != nil {
			select {
			case cycleErr <- err:
			default:
			}
		}
	}); err != nil {
		return fmt.Errorf("parse poll schedule: %w", err)
	}

	// First check runs immediately; cron drives the rest.
	if _, err := m.Cycle(ctx); err != nil {
		return err
	}

	c.Start()
	defer func() { <-c.Stop().Done() }()

	select {
	case err := <-cycleErr:
		return err
	case <-ctx.Done():
		log.Printf("[monitor] stopped")
		return ctx.Err()
	}
}
