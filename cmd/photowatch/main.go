package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopmap/internal/env"
	"shopmap/internal/logger"
	"shopmap/internal/service"
	"shopmap/internal/store"
	"shopmap/pkg/graceful"
	"shopmap/pkg/kafkaclient"
)

func main() {
	cfg, err := env.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = zl.Sync() }()

	if !cfg.KafkaEnabled() {
		zl.Fatal("KAFKA_BROKER not set")
	}
	if !cfg.CloudEnabled() {
		zl.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := graceful.Context(context.Background(), zl)
	defer cancel()

	pg, err := store.OpenPostgres(ctx, cfg.Store.DatabaseURL, zl.Named("postgres"))
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer pg.Close()

	zl.Info("connecting to kafka",
		zap.String("broker", cfg.Kafka.Broker), zap.String("topic", cfg.Kafka.Topic), zap.String("group_id", cfg.Kafka.GroupID))
	consumer := kafkaclient.NewKafkaConsumer(kafkaclient.Config{
		Broker:  cfg.Kafka.Broker,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, zl.Named("kafka"))

	janitor := service.NewPhotoJanitor(func(user uuid.UUID) store.RecordStore {
		return pg.ForUser(user)
	}, cfg.Storage.Bucket, zl.Named("janitor"))

	consumer.StartConsuming(ctx)
	iterator := service.NewIterator[int](consumer, janitor.Handle, zl.Named("events"))
	for obj := range iterator.Objects(ctx) {
		if obj.Data > 0 {
			zl.Info("photo removed", zap.String("key", obj.Event.S3.Object.Key), zap.Int("pruned", obj.Data))
		}
	}

	consumer.Stop()
	zl.Info("photo watcher exiting")
}
