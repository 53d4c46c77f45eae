package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/pkg/logger"
	"github.com/loggate/loggate/internal/pkg/metrics"
)

// DeliverySource is the queue collaborator as the worker sees it. The
// source owns redelivery mechanics; the consumer only claims, acks, or
// hands batches back.
type DeliverySource interface {
	Dequeue(ctx context.Context, max int, wait time.Duration) ([]model.Delivery, error)
	Ack(ctx context.Context, deliveries []model.Delivery) error
	Requeue(ctx context.Context, deliveries []model.Delivery) error
}

// Consumer runs the batch loop against the queue until stopped.
type Consumer struct {
	source    DeliverySource
	batch     *BatchProcessor
	batchSize int
	wait      time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(source DeliverySource, batch *BatchProcessor, batchSize int, wait time.Duration) *Consumer {
	if batchSize <= 0 {
		batchSize = 10
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Consumer{
		source:    source,
		batch:     batch,
		batchSize: batchSize,
		wait:      wait,
		done:      make(chan struct{}),
	}
}

func (c *Consumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

// Stop cancels the dequeue wait and blocks until the in-flight batch
// finishes. Batches are never cancelled mid-flight.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		deliveries, err := c.source.Dequeue(ctx, c.batchSize, c.wait)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.LogError(ctx, err, "dequeue failed, backing off")
			if len(deliveries) == 0 {
				select {
				case <-time.After(c.wait):
					continue
				case <-ctx.Done():
					return
				}
			}
			// partial claim: process what we got, the rest stays queued
		}
		if len(deliveries) == 0 {
			continue
		}

		c.handleBatch(deliveries)
	}
}

func (c *Consumer) handleBatch(deliveries []model.Delivery) {
	// The in-flight batch runs on its own context: Stop() must not abort a
	// half-processed delivery.
	ctx := context.Background()
	start := time.Now()

	envelopes := make([]model.Envelope, len(deliveries))
	for i, d := range deliveries {
		envelopes[i] = d.Envelope
	}

	result, err := c.batch.ProcessBatch(ctx, envelopes)
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	summary, _ := json.Marshal(result)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("redelivered").Inc()
		logger.Warn("batch failed, requeueing for redelivery", "result", string(summary))
		if rqErr := c.source.Requeue(ctx, deliveries); rqErr != nil {
			logger.LogError(ctx, rqErr, "requeue failed, deliveries remain in processing list")
		}
		return
	}

	metrics.BatchesTotal.WithLabelValues("ok").Inc()
	logger.Info("batch complete", "result", string(summary))
	if ackErr := c.source.Ack(ctx, deliveries); ackErr != nil {
		logger.LogError(ctx, ackErr, "ack failed, duplicates possible on redelivery")
	}
}
