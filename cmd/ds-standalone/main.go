package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/event"
	"github.com/tuanvumaihuynh/digital-store/internal/http"
	"github.com/tuanvumaihuynh/digital-store/internal/log"
	"github.com/tuanvumaihuynh/digital-store/internal/metric"
	"github.com/tuanvumaihuynh/digital-store/internal/relay"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
	"github.com/tuanvumaihuynh/digital-store/internal/session"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/blob"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/cache"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/mq"
	"github.com/tuanvumaihuynh/digital-store/internal/telemetry"
	"github.com/tuanvumaihuynh/digital-store/internal/upload"
	"github.com/tuanvumaihuynh/digital-store/pkg/cmdutil"
	"github.com/tuanvumaihuynh/digital-store/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Upload   config.Upload
		S3       config.S3
		Redis    config.Redis
		Cache    config.Cache
		Session  config.Session
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("error creating redis client: %w", err)
	}
	defer rdb.Close()

	disk, err := blob.NewDisk(ctx, cfg.Upload, cfg.S3)
	if err != nil {
		return fmt.Errorf("error creating upload disk: %w", err)
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	metrics := metric.New(prometheus.DefaultRegisterer)
	productCache := cache.NewRedisProductCache(rdb, cfg.Cache.ProductTTL)
	sessions := session.NewManager(cfg.Session, session.NewRedisStore(rdb), logger)

	productRepository := repository.NewProductRepository(dbClient)
	categoryRepository := repository.NewCategoryRepository(dbClient)
	userRepository := repository.NewUserRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	productService := service.NewProductService(
		cfg.Upload,
		logger,
		dbClient,
		productRepository,
		categoryRepository,
		outboxMsgRepository,
		upload.NewUploader(disk),
		productCache,
		metrics,
	)
	categoryService := service.NewCategoryService(logger, categoryRepository)
	userService := service.NewUserService(logger, v, userRepository)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, productCache)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(
			cfg.HTTP,
			cfg.Upload,
			logger,
			metrics,
			prometheus.DefaultGatherer,
			dbClient,
			sessions,
			productService,
			categoryService,
			userService,
		)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer, metrics)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
