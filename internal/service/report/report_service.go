package report

import (
	"context"
	"time"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/view"
)

type ReportUseCase interface {
	Report(ctx context.Context) (view.Report, error)
	SystemDate(ctx context.Context) (time.Time, error)
	SetSystemDate(ctx context.Context, date time.Time) (command.Result, error)
}

type ReportService struct {
	ledger *service.Dispatcher
}

func NewReportService(d *service.Dispatcher) *ReportService {
	return &ReportService{ledger: d}
}

func (s *ReportService) Report(_ context.Context) (view.Report, error) {
	var out view.Report
	err := s.ledger.View(func(reg *ledger.Registry) error {
		out = view.NewReport(reg)
		return nil
	})
	return out, err
}

func (s *ReportService) SystemDate(_ context.Context) (time.Time, error) {
	var out time.Time
	err := s.ledger.View(func(reg *ledger.Registry) error {
		out = reg.SystemDate()
		return nil
	})
	return out, err
}

func (s *ReportService) SetSystemDate(ctx context.Context, date time.Time) (command.Result, error) {
	return s.ledger.Dispatch(ctx, &command.SetSystemDate{Date: date}, kafka.EventSystemDateSet)
}

var _ ReportUseCase = (*ReportService)(nil)
