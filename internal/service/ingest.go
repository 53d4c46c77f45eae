package service

import (
	"context"

	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/normalizer"
	"github.com/loggate/loggate/internal/pkg/apperrors"
	"github.com/loggate/loggate/internal/pkg/metrics"
)

// RecordQueue is the producer side of the delivery mechanism.
type RecordQueue interface {
	Enqueue(ctx context.Context, rec model.LogRecord) error
}

// IngestService normalizes inbound payloads and queues them for the
// worker. It returns as soon as the record is durably enqueued; processing
// is asynchronous.
type IngestService struct {
	norm  *normalizer.Normalizer
	queue RecordQueue
}

func NewIngestService(norm *normalizer.Normalizer, queue RecordQueue) *IngestService {
	return &IngestService{norm: norm, queue: queue}
}

func (s *IngestService) SubmitJSON(ctx context.Context, body []byte) (model.LogRecord, error) {
	rec, err := s.norm.FromJSON(body)
	if err != nil {
		return model.LogRecord{}, err
	}
	return s.enqueue(ctx, rec)
}

func (s *IngestService) SubmitText(ctx context.Context, tenantID string, body []byte) (model.LogRecord, error) {
	rec, err := s.norm.FromText(tenantID, body)
	if err != nil {
		return model.LogRecord{}, err
	}
	return s.enqueue(ctx, rec)
}

func (s *IngestService) enqueue(ctx context.Context, rec model.LogRecord) (model.LogRecord, error) {
	if err := s.queue.Enqueue(ctx, rec); err != nil {
		return model.LogRecord{}, apperrors.New(apperrors.ErrQueue, "failed to enqueue record", err)
	}
	metrics.EnqueuedTotal.Inc()
	return rec, nil
}
