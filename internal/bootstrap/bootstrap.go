// Package bootstrap builds the runtime dependencies shared by the storefront
// server and basketctl from a loaded config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Katyxel/add-basket/internal/config"
	"github.com/Katyxel/add-basket/internal/notify"
	"github.com/Katyxel/add-basket/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSlotTTL is how long an untouched cart survives in Redis.
const RedisSlotTTL = 30 * 24 * time.Hour

// OpenSlot connects the configured cart slot backend. The returned func
// releases its connections.
func OpenSlot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Slot, func(), error) {
	switch cfg.SlotBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		return store.NewRedisSlot(client, RedisSlotTTL), func() { client.Close() }, nil

	case config.BackendMongo:
		db, err := store.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		slot := store.NewMongoSlot(db)
		if err := slot.CreateIndexes(ctx); err != nil {
			logger.Warn("create slot indexes failed", zap.Error(err))
		}
		logger.Info("connected to mongodb", zap.String("db", cfg.MongoDBName))
		return slot, func() { db.Client().Disconnect(context.Background()) }, nil

	case config.BackendMemory:
		return store.NewMemorySlot(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown slot backend %q", config.ErrInvalidConfig, cfg.SlotBackend)
}

// Notifier logs every notification and also publishes it to Kafka and
// RabbitMQ when those are configured. An unreachable RabbitMQ is logged and
// skipped.
func Notifier(cfg *config.Config, logger *zap.Logger) (*notify.Multi, func()) {
	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	var closers []func() error

	if len(cfg.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(cfg.KafkaTopic, cfg.KafkaBrokers...)
		notifiers = append(notifiers, kn)
		closers = append(closers, kn.Close)
	}
	if cfg.AMQPURL != "" {
		an, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("rabbitmq notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, an)
			closers = append(closers, an.Close)
		}
	}

	closeFn := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close notifier failed", zap.Error(err))
			}
		}
	}
	return notify.NewMulti(logger, notifiers...), closeFn
}
