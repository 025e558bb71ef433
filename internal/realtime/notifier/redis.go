package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kushal45/OMS-sub001/internal/common/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier implements Notifier over a redis pub/sub channel. Delivery is
// fire-and-forget to match the hub's at-most-once contract; there is no
// replay for instances that were down at publish time.
type RedisNotifier struct {
	logger  *zap.Logger
	client  redis.UniversalClient
	channel string
}

var _ Notifier = (*RedisNotifier)(nil)

// NewRedisNotifier creates a redis-backed notifier and verifies connectivity
func NewRedisNotifier(logger *zap.Logger, cfg config.NotifierRedisConfig) (*RedisNotifier, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Addr},
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{
		logger:  logger.Named("notifier.redis"),
		client:  client,
		channel: cfg.Channel,
	}, nil
}

// Publish implements Notifier.Publish
func (r *RedisNotifier) Publish(ctx context.Context, evt *Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal notifier event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish notifier event: %w", err)
	}
	return nil
}

// Watch implements Notifier.Watch
func (r *RedisNotifier) Watch(ctx context.Context) (<-chan *Event, error) {
	sub := r.client.Subscribe(ctx, r.channel)

	// Force the subscription to be established before returning
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to channel %s: %w", r.channel, err)
	}

	ch := make(chan *Event, 16)
	go func() {
		defer close(ch)
		defer func() {
			_ = sub.Close()
		}()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					r.logger.Error("failed to unmarshal notifier event", zap.Error(err))
					continue
				}
				select {
				case ch <- &evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close implements Notifier.Close
func (r *RedisNotifier) Close() error {
	return r.client.Close()
}
