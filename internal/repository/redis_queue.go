package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loggate/loggate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is the at-least-once delivery mechanism: producers LPUSH
// envelopes onto the queue list, consumers claim them into a processing
// list, and either ack (remove) or requeue (hand back for redelivery).
// Retry cadence and dead-lettering live here, outside the worker core.
type RedisQueue struct {
	client        *redis.Client
	queueKey      string
	processingKey string
}

func NewRedisQueue(rc *RedisClient, queueKey, processingKey string) *RedisQueue {
	return &RedisQueue{
		client:        rc.Client,
		queueKey:      queueKey,
		processingKey: processingKey,
	}
}

// Enqueue wraps rec in the wire envelope {"body": "<record JSON>"} and
// pushes it onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, rec model.LogRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(model.Envelope{Body: string(body)})
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.queueKey, payload).Err()
}

// Dequeue claims up to max envelopes, blocking up to wait for the first
// one. Claimed payloads move atomically into the processing list so a
// crashed worker leaves them recoverable rather than lost.
func (q *RedisQueue) Dequeue(ctx context.Context, max int, wait time.Duration) ([]model.Delivery, error) {
	if max <= 0 {
		max = 1
	}

	raw, err := q.client.BLMove(ctx, q.queueKey, q.processingKey, "RIGHT", "LEFT", wait).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	deliveries := []model.Delivery{decodeDelivery(raw)}
	for len(deliveries) < max {
		raw, err := q.client.LMove(ctx, q.queueKey, q.processingKey, "RIGHT", "LEFT").Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return deliveries, err
		}
		deliveries = append(deliveries, decodeDelivery(raw))
	}
	return deliveries, nil
}

// Ack removes delivered payloads from the processing list.
func (q *RedisQueue) Ack(ctx context.Context, deliveries []model.Delivery) error {
	pipe := q.client.Pipeline()
	for _, d := range deliveries {
		pipe.LRem(ctx, q.processingKey, 1, d.Raw)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Requeue hands the whole batch back for redelivery, at the consuming end
// of the queue. Already-stored records in the batch are absorbed by the
// idempotency check on the next attempt.
func (q *RedisQueue) Requeue(ctx context.Context, deliveries []model.Delivery) error {
	pipe := q.client.Pipeline()
	for _, d := range deliveries {
		pipe.RPush(ctx, q.queueKey, d.Raw)
		pipe.LRem(ctx, q.processingKey, 1, d.Raw)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func decodeDelivery(raw string) model.Delivery {
	var env model.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		// Not a valid envelope: surface the raw payload as the body so the
		// batch loop classifies it as malformed instead of losing it here.
		env = model.Envelope{Body: raw}
	}
	return model.Delivery{Raw: raw, Envelope: env}
}
