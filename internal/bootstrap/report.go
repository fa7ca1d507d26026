package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/worker"
)

// NewReportJob returns the report job this process should run, or nil when
// another process owns it. With a shared store the worker (l == nil) reads the
// database. Otherwise the store is locked by the process holding the ledger,
// so that process reports on its registry directly.
func NewReportJob(cfg *config.Config, l *Ledger, log *logrus.Entry) *worker.ReportJob {
	switch {
	case cfg.Storage.Shared() && l == nil:
		return worker.NewReportJob(worker.StoreSource(func(ctx context.Context) (command.Store, func() error, error) {
			return OpenStore(ctx, cfg.Storage)
		}), log)
	case !cfg.Storage.Shared() && l != nil:
		return worker.NewReportJob(worker.LedgerSource(l.Services.Reports), log)
	}
	return nil
}

// StartScheduler schedules job with crontab on a new scheduler and starts it.
func StartScheduler(ctx context.Context, job *worker.ReportJob, crontab string) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := job.Schedule(ctx, s, crontab); err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	s.Start()
	return s, nil
}
