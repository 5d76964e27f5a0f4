package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"companymap/internal/api"
	"companymap/internal/cache"
	"companymap/internal/env"
	"companymap/internal/layout"
	"companymap/internal/logging"
	"companymap/internal/metrics"
	"companymap/internal/models"
	"companymap/internal/prepare"
	"companymap/internal/service"
	"companymap/internal/storage"
	"companymap/internal/store"
	"companymap/pkg/graceful"
	"companymap/pkg/kafkaclient"
	"companymap/pkg/location"
	"companymap/pkg/wikipedia"
)

func main() {
	env.LoadEnv(zerolog.New(os.Stderr))

	cfg, err := env.Load()
	if err != nil {
		log := zerolog.New(os.Stderr)
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := graceful.Context(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server exited")
}

func run(ctx context.Context, cfg env.Config, logger zerolog.Logger) error {
	recorder := metrics.NewRecorder()

	s3, err := storage.NewS3Service(cfg.MinIO, logger)
	if err != nil {
		return err
	}
	if _, err := s3.CreateBucket(ctx, cfg.Dataset.LayoutBucket, ""); err != nil {
		return err
	}

	enrichers := prepare.Enrichers{Observer: recorder}
	if cfg.Geocoder.Enabled {
		opts := []location.Option{
			location.WithBaseURL(cfg.Geocoder.BaseURL),
			location.WithUserAgent(cfg.Geocoder.UserAgent),
			location.WithMinInterval(cfg.Geocoder.MinInterval),
			location.WithLogger(logger),
		}
		if cfg.Redis.Enabled() {
			rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer rdb.Close()
			opts = append(opts, location.WithCache(cache.NewGeocodeCache(rdb, cfg.Redis.TTL)))
		}
		enrichers.Geocoder = location.NewClient(opts...)
	}
	if cfg.Wikipedia.Enabled {
		enrichers.Summarizer = wikipedia.NewSummaryService(wikipedia.NewClient(
			wikipedia.WithBaseURL(cfg.Wikipedia.BaseURL),
			wikipedia.WithUserAgent(cfg.Geocoder.UserAgent),
		))
	}

	prepOpts := []prepare.Option{
		prepare.WithPipeline(prepare.NewCompanyPipeline(logger, enrichers)),
		prepare.WithRecorder(recorder),
	}
	if cfg.Collation != "" {
		tag, err := language.Parse(cfg.Collation)
		if err != nil {
			return err
		}
		prepOpts = append(prepOpts, prepare.WithCollation(tag))
	}

	holder := layout.NewHolder()
	publisher := layout.NewPublisher(logger).Add("s3", s3.LayoutSink(cfg.Dataset.LayoutBucket))

	if cfg.Postgres.Enabled() {
		pool, err := store.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		points := store.NewPointStore(pool, logger)
		if err := points.Migrate(ctx); err != nil {
			return err
		}
		publisher.Add("postgres", points)
	}
	if cfg.Kafka.Enabled() && cfg.Kafka.LayoutTopic != "" {
		events := kafkaclient.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.LayoutTopic, logger)
		defer events.Close()
		publisher.Add("kafka", events)
	}
	publisher.Add("memory", holder)

	r := &refresher{
		store:     s3,
		preparer:  prepare.New(logger, prepOpts...),
		publisher: publisher,
		holder:    holder,
		logger:    logger,
	}
	if err := r.bootstrap(ctx, cfg.Dataset.Bucket, cfg.Dataset.Key, cfg.Dataset.LayoutBucket); err != nil {
		logger.Error().Err(err).Msg("Initial layout failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchErr := make(chan error, 1)

	if cfg.Kafka.Enabled() {
		consumer := kafkaclient.NewKafkaConsumer(cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Broker, logger)
		consumer.StartConsuming(ctx)
		defer consumer.Stop()

		it := service.NewIterator[[]models.Company](consumer, s3.GetDataset, logger,
			service.OnlyKey(cfg.Dataset.Bucket, cfg.Dataset.Key))
		go func() {
			for obj := range it.Objects(ctx) {
				if err := r.apply(ctx, obj.Bucket+"/"+obj.Key, obj.Data); err != nil {
					logger.Error().Err(err).Msg("Layout refresh failed")
				}
			}
			// The failed event is still uncommitted; exiting lets a restart
			// redeliver it.
			if err := it.Err(); err != nil {
				watchErr <- fmt.Errorf("dataset watcher stopped: %w", err)
				cancel()
			}
		}()
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(holder, recorder.Handler(), logger)
	if err := api.NewServer(cfg.HTTPAddr, router, logger).Run(ctx); err != nil {
		return err
	}
	select {
	case err := <-watchErr:
		return err
	default:
		return nil
	}
}
