// Package worker holds the scheduled background jobs.
package worker

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/report"
	"github.com/Domenick1991/flightledger/internal/view"
)

// Source produces the report for one job run.
type Source func(ctx context.Context) (view.Report, error)

// OpenStore opens the ledger store for one job run and returns its closer.
type OpenStore func(ctx context.Context) (command.Store, func() error, error)

// StoreSource reads the last committed ledger from a store opened per run. It
// suits stores that other processes may open concurrently (postgres).
func StoreSource(open OpenStore) Source {
	return func(ctx context.Context) (view.Report, error) {
		store, closeStore, err := open(ctx)
		if err != nil {
			return view.Report{}, fmt.Errorf("open store: %w", err)
		}
		defer closeStore()

		reg, err := store.Load(ctx)
		if err != nil {
			return view.Report{}, fmt.Errorf("load ledger: %w", err)
		}
		return view.NewReport(reg), nil
	}
}

// LedgerSource reports on the ledger held by this process.
func LedgerSource(reports report.ReportUseCase) Source {
	return reports.Report
}

// ReportJob logs the admin report. It never writes to the ledger.
type ReportJob struct {
	source Source
	log    *logrus.Entry
}

func NewReportJob(source Source, log *logrus.Entry) *ReportJob {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ReportJob{source: source, log: log.WithField("job", "report")}
}

func (j *ReportJob) Run(ctx context.Context) (view.Report, error) {
	r, err := j.source(ctx)
	if err != nil {
		return view.Report{}, err
	}

	fields := logrus.Fields{
		"system_date":      r.SystemDate.Format(domain.DateLayout),
		"active_flights":   r.ActiveFlights,
		"active_customers": r.ActiveCustomers,
		"bookings":         r.Bookings,
		"total_revenue":    r.TotalRevenue,
	}
	if r.MostBooked != nil {
		fields["most_booked"] = r.MostBooked.FlightNumber
		fields["most_booked_passengers"] = r.MostBookedCount
	}
	j.log.WithFields(fields).Info("ledger report")
	return r, nil
}

// Schedule registers the job on s with a crontab expression. Failed runs are
// logged.
func (j *ReportJob) Schedule(ctx context.Context, s gocron.Scheduler, crontab string) (gocron.Job, error) {
	job, err := s.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(func() {
			if _, err := j.Run(ctx); err != nil {
				j.log.WithError(err).Warn("report run failed")
			}
		}),
		gocron.WithName("ledger-report"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule report %q: %w", crontab, err)
	}
	return job, nil
}
