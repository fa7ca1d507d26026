package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/bootstrap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, err := bootstrap.NewLedger(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open ledger: %v", err)
	}
	defer ledger.Close()

	if report := bootstrap.NewReportJob(cfg, ledger, logger); report != nil {
		scheduler, err := bootstrap.StartScheduler(ctx, report, cfg.Worker.ReportCron)
		if err != nil {
			log.Fatalf("schedule report: %v", err)
		}
		defer scheduler.Shutdown()
	}

	if err := bootstrap.Run(ctx, cfg, ledger.Services, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
