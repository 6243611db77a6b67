// Package scheduler drives the periodic sweeps. The services expose
// plain callables; all cron wiring lives here.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"librarydesk/config"
	loansvc "librarydesk/service/loan"
	penaltysvc "librarydesk/service/penalty"
)

type Scheduler struct {
	c   *cron.Cron
	log *slog.Logger
}

func New(cfg config.App, loans loansvc.Service, penalty penaltysvc.Service, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (int64, error)
	}{
		{"overdue_sweep", cfg.OverdueSweepSpec, loans.SweepOverdue},
		{"late_return_sweep", cfg.LateReturnSweepSpec, func(ctx context.Context) (int64, error) {
			n, err := penalty.SweepLateReturns(ctx)
			return int64(n), err
		}},
		{"suspension_sweep", cfg.SuspensionSweepSpec, func(ctx context.Context) (int64, error) {
			n, err := penalty.SweepSuspensions(ctx)
			return int64(n), err
		}},
		{"inactivity_sweep", cfg.InactivitySweepSpec, func(ctx context.Context) (int64, error) {
			n, err := penalty.SweepInactive(ctx)
			return int64(n), err
		}},
	}

	for _, j := range jobs {
		j := j
		if _, err := c.AddFunc(j.spec, func() {
			n, err := j.run(context.Background())
			if err != nil {
				log.Error("sweep failed", "job", j.name, "err", err)
				return
			}
			log.Info("sweep done", "job", j.name, "affected", n)
		}); err != nil {
			return nil, err
		}
	}

	return &Scheduler{c: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.c.Start()
	s.log.Info("scheduler started", "jobs", len(s.c.Entries()))
}

func (s *Scheduler) Stop() context.Context { return s.c.Stop() }
