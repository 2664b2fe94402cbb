package notif

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"claridx/internal/common"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay shares changes between instances over one pub/sub channel.
type RedisRelay struct {
	client  *redis.Client
	channel string
	log     *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
}

func NewRedisRelay(client *redis.Client, prefix string, log *zap.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: fmt.Sprintf("%s:changes", prefix),
		log:     log.Named("redis-relay"),
	}
}

func (r *RedisRelay) Channel() string {
	return r.channel
}

func (r *RedisRelay) Forward(ctx context.Context, change Change) error {
	payload, err := encodeChange(change)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Listen blocks until the subscription is confirmed, then delivers in the
// background until Close.
func (r *RedisRelay) Listen(ctx context.Context, deliver func(Change)) error {
	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	r.mu.Lock()
	r.pubsub = ps
	r.mu.Unlock()

	messages := ps.Channel()
	common.SafeGo(r.log, "redis-relay", func() {
		for msg := range messages {
			change, err := decodeChange([]byte(msg.Payload))
			if err != nil {
				r.log.Warn("dropping malformed change", zap.Error(err))
				continue
			}
			deliver(change)
		}
	})

	r.log.Info("relay listening", zap.String("channel", r.channel))
	return nil
}

func (r *RedisRelay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	r.pubsub = nil
	return err
}

func encodeChange(change Change) ([]byte, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return payload, nil
}

func decodeChange(payload []byte) (Change, error) {
	var change Change
	if err := json.Unmarshal(payload, &change); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if change.Table == "" {
		return Change{}, fmt.Errorf("decode change: missing table")
	}
	return change, nil
}
