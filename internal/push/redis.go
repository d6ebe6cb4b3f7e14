package push

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatsync/config"
	"github.com/redis/go-redis/v9"
)

// RedisTransport rides the push channel over Redis pub/sub. Topic names
// map directly to Redis channels; go-redis re-establishes the pub/sub
// connection itself after a drop.
type RedisTransport struct {
	client *redis.Client
	pubsub *redis.PubSub
}

func NewRedisTransport(cfg config.RedisConfig) *RedisTransport {
	return &RedisTransport{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

func (t *RedisTransport) Connect(ctx context.Context, recv MessageFunc, state StateFunc) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	// Channel-less subscribe; topics are added per key by the manager.
	t.pubsub = t.client.Subscribe(ctx)

	go func() {
		for msg := range t.pubsub.Channel() {
			recv(msg.Channel, []byte(msg.Payload))
		}
		state(false, nil)
	}()

	return nil
}

func (t *RedisTransport) Subscribe(ctx context.Context, topic string) error {
	if t.pubsub == nil {
		return ErrNotConnected
	}
	return t.pubsub.Subscribe(ctx, topic)
}

func (t *RedisTransport) Unsubscribe(ctx context.Context, topic string) error {
	if t.pubsub == nil {
		return nil
	}
	return t.pubsub.Unsubscribe(ctx, topic)
}

func (t *RedisTransport) Close() error {
	if t.pubsub != nil {
		if err := t.pubsub.Close(); err != nil {
			return err
		}
	}
	return t.client.Close()
}
