package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/homecare/api"
	"github.com/Domenick1991/homecare/config"
	"github.com/Domenick1991/homecare/internal/bootstrap"
	"github.com/Domenick1991/homecare/internal/cache"
	"github.com/Domenick1991/homecare/internal/catalog"
	"github.com/Domenick1991/homecare/internal/command"
	"github.com/Domenick1991/homecare/internal/kafka"
	"github.com/Domenick1991/homecare/internal/logger"
	"github.com/Domenick1991/homecare/internal/notify"
	"github.com/Domenick1991/homecare/internal/reference"
	"github.com/Domenick1991/homecare/internal/repository"
	"github.com/Domenick1991/homecare/internal/service/booking"
	"github.com/Domenick1991/homecare/internal/service/directory"
	"github.com/Domenick1991/homecare/internal/sms"
	"github.com/Domenick1991/homecare/internal/ussd"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
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

	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		lg.Fatal("ping postgres", zap.Error(err))
	}

	var guardCache booking.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			lg.Warn("redis unavailable, relying on store uniqueness", zap.Error(err))
		}
		guardCache = redisCache
	}

	var (
		sender   notify.Sender
		rewarder notify.Rewarder
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			lg.Warn("kafka unavailable", zap.Error(err))
		}
		queue := notify.NewQueue(producer, cfg.Kafka.NotificationsTopic)
		sender, rewarder = queue, queue
	} else {
		sender, rewarder, err = sms.New(cfg.SMS, lg)
		if err != nil {
			lg.Fatal("init sms provider", zap.Error(err))
		}
	}

	registry := catalog.Default()
	clientRepo := repository.NewClientRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	orchestrator := booking.NewOrchestrator(
		bookingRepo,
		paymentRepo,
		reference.NewGenerator(),
		sender,
		rewarder,
		lg,
		booking.WithIncentive(cfg.Booking.IncentiveTSh),
		booking.WithAlertPhones(cfg.SMS.AlertPhones),
	)
	bookingService := booking.NewBookingService(bookingRepo, paymentRepo)
	directoryService := directory.NewDirectoryService(clientRepo, cfg.Booking.CountryCode)
	guard := booking.NewGuard(guardCache, time.Duration(cfg.Booking.FinalizeTTLMinutes)*time.Minute, lg)

	machine := ussd.NewMachine(registry, orchestrator, guard, lg, cfg.SMS.Shortcode)
	interpreter := command.NewInterpreter(directoryService, bookingService, orchestrator, registry, guard, lg)

	router := api.NewRouter(
		api.NewUSSDHandler(directoryService, machine, lg),
		api.NewSMSHandler(interpreter, sender, lg),
		lg,
		api.RouterOptions{
			SwaggerDir:        cfg.HTTP.SwaggerDir,
			RequestsPerMinute: cfg.Booking.RequestsPerMinute,
		},
	)

	if err := bootstrap.Run(ctx, cfg, router, lg); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
