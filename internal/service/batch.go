package service

import (
	"context"
	"encoding/json"

	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/pkg/apperrors"
	"github.com/loggate/loggate/internal/pkg/logger"
	"github.com/loggate/loggate/internal/pkg/metrics"
)

// BatchProcessor drives the processor over one delivered batch. Records
// are handled sequentially and independently: a malformed record is
// counted and skipped (redelivering it can never succeed), while a
// transient storage failure is counted and then re-raised immediately so
// the delivery mechanism redelivers the unprocessed remainder.
type BatchProcessor struct {
	processor *LogProcessor
}

func NewBatchProcessor(processor *LogProcessor) *BatchProcessor {
	return &BatchProcessor{processor: processor}
}

// ProcessBatch attempts every envelope in order and aggregates outcomes.
// result.Total always equals len(envelopes), even when a transient error
// aborts the loop partway. A non-nil error means the whole batch must be
// redelivered; already-stored records are absorbed as duplicates on the
// next attempt.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, envelopes []model.Envelope) (model.BatchResult, error) {
	result := model.BatchResult{Total: len(envelopes)}

	for _, env := range envelopes {
		rec, err := parseRecord(env)
		if err != nil {
			result.Errors++
			metrics.RecordsTotal.WithLabelValues("malformed").Inc()
			logger.Warn("skipping malformed record", "error", err.Error())
			continue
		}

		outcome, err := b.processor.Store(ctx, rec)
		if err != nil {
			// Storage is unhealthy (or the failure is unclassified, which
			// errs toward redelivery): abort here. Siblings already handled
			// keep their counts; the remainder comes back with the batch.
			result.Errors++
			metrics.RecordsTotal.WithLabelValues("transient").Inc()
			logger.LogError(ctx, err, "aborting batch on storage failure",
				"tenant_id", rec.TenantID, "log_id", rec.LogID)
			return result, err
		}

		switch outcome {
		case OutcomeDuplicate:
			result.SkippedDuplicates++
			metrics.RecordsTotal.WithLabelValues("duplicate").Inc()
			logger.Debug("duplicate delivery absorbed", "tenant_id", rec.TenantID, "log_id", rec.LogID)
		default:
			result.Processed++
			metrics.RecordsTotal.WithLabelValues("stored").Inc()
		}
	}

	return result, nil
}

// wire shape of the envelope body; log_id and text are pointers so a
// present-but-empty field stays valid while an absent one is malformed.
// An empty log_id produces the sort key "LOG#", same as the upstream
// pipeline always did.
type wireRecord struct {
	TenantID  string  `json:"tenant_id"`
	LogID     *string `json:"log_id"`
	Text      *string `json:"text"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
}

func parseRecord(env model.Envelope) (model.LogRecord, error) {
	var wire wireRecord
	if err := json.Unmarshal([]byte(env.Body), &wire); err != nil {
		return model.LogRecord{}, apperrors.NewMalformedRecord("envelope body is not valid JSON", err)
	}
	if wire.TenantID == "" || wire.LogID == nil || wire.Text == nil || wire.Source == "" || wire.Timestamp == "" {
		return model.LogRecord{}, apperrors.NewMalformedRecord("record is missing required fields", nil)
	}
	return model.LogRecord{
		TenantID:  wire.TenantID,
		LogID:     *wire.LogID,
		Text:      *wire.Text,
		Source:    wire.Source,
		Timestamp: wire.Timestamp,
	}, nil
}
