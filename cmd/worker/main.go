package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/bootstrap"
	"github.com/Domenick1991/flightledger/internal/email"
	"github.com/Domenick1991/flightledger/internal/kafka"
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

	if report := bootstrap.NewReportJob(cfg, nil, logger); report != nil {
		scheduler, err := bootstrap.StartScheduler(ctx, report, cfg.Worker.ReportCron)
		if err != nil {
			log.Fatalf("schedule report: %v", err)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				log.Printf("scheduler shutdown: %v", err)
			}
		}()
	} else {
		logger.WithField("driver", cfg.Storage.Driver).Info("report job runs in the app process")
	}

	if !cfg.Kafka.Enabled() {
		logger.Warn("no kafka brokers configured, notifications are disabled")
		<-ctx.Done()
		return
	}

	var senderOpts []email.Option
	if cfg.SMTP.Enabled() {
		client, err := email.NewSMTPClient(cfg.SMTP)
		if err != nil {
			log.Fatalf("smtp: %v", err)
		}
		senderOpts = append(senderOpts, email.WithMailer(client, cfg.SMTP.From))
	}
	sender := email.NewSender(logger, senderOpts...)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	if err := consumer.Consume(ctx, sender.Send); err != nil {
		log.Printf("consumer stopped: %v", err)
	}
	log.Printf("shutting down")
}
