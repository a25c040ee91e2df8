package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const popTimeout = 5 * time.Second

// RedisQueue publishes events onto a Redis list and consumes them in Run.
// Events survive a restart of the consuming process.
type RedisQueue struct {
	client    listClient
	key       string
	listeners *listeners
	logger    *zap.Logger
}

// listClient is the subset of *redis.Client the queue uses.
type listClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// NewRedisQueue creates a queue on the given list key.
func NewRedisQueue(client *redis.Client, key string, logger *zap.Logger) *RedisQueue {
	return newRedisQueue(client, key, logger)
}

func newRedisQueue(client listClient, key string, logger *zap.Logger) *RedisQueue {
	return &RedisQueue{client: client, key: key, listeners: newListeners(), logger: logger}
}

// Publish appends the event to the list.
func (q *RedisQueue) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, q.key, payload).Err()
}

// Subscribe registers a handler for the given event type.
func (q *RedisQueue) Subscribe(eventType EventType, handler EventHandler) {
	q.listeners.add(eventType, handler)
}

// Run pops events until ctx is cancelled and runs their handlers one at a time.
func (q *RedisQueue) Run(ctx context.Context) {
	q.logger.Info("event queue consumer started", zap.String("key", q.key))
	for {
		if ctx.Err() != nil {
			q.logger.Info("event queue consumer stopped")
			return
		}
		res, err := q.client.BLPop(ctx, popTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.logger.Warn("event queue pop failed", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		if len(res) != 2 {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(res[1]), &event); err != nil {
			q.logger.Error("dropping malformed event", zap.Error(err))
			continue
		}
		for _, handler := range q.listeners.forType(event.Type) {
			runHandler(ctx, q.logger, handler, event)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
