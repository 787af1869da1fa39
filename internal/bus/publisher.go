package bus

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers an event value to a topic, keyed by aggregate id so
// consumers can partition per aggregate. The synchronous error is the only
// delivery feedback the outbox publisher acts on.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// RedisStreamPublisher publishes events to one Redis stream per topic.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher instantiates the publisher.
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{
			"key":   key,
			"value": value,
		},
	}).Err()
}
