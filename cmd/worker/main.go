package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/homecare/config"
	"github.com/Domenick1991/homecare/internal/kafka"
	"github.com/Domenick1991/homecare/internal/logger"
	"github.com/Domenick1991/homecare/internal/notify"
	"github.com/Domenick1991/homecare/internal/sms"
	"go.uber.org/zap"
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

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	if len(cfg.Kafka.Brokers) == 0 {
		lg.Fatal("worker needs kafka brokers")
	}

	sender, rewarder, err := sms.New(cfg.SMS, lg)
	if err != nil {
		lg.Fatal("init sms provider", zap.Error(err))
	}
	if rewarder == nil {
		lg.Warn("sms provider cannot send airtime, incentives will be dropped", zap.String("provider", cfg.SMS.Provider))
	}
	dispatcher := notify.NewDispatcher(sender, rewarder, lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg)
	defer consumer.Close()

	lg.Info("notification worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.NotificationsTopic))

	if err := consumer.Consume(ctx, dispatcher.Deliver); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("consumer stopped", zap.Error(err))
		return
	}
	lg.Info("notification worker stopped")
}
