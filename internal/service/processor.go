package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/pkg/apperrors"
	"github.com/loggate/loggate/internal/redact"
	"github.com/shopspring/decimal"
)

// Outcome tags the result of one successful Store call. Failures travel on
// the error channel, not here, so call sites branch on an explicit tag.
type Outcome int

const (
	OutcomeStored Outcome = iota
	OutcomeDuplicate
)

func (o Outcome) String() string {
	if o == OutcomeDuplicate {
		return "duplicate"
	}
	return "stored"
}

// LogStore is the storage collaborator contract: an atomic conditional put
// keyed by the composite identity. ok=false with a nil error is the
// distinguishable "entry already exists" signal; a non-nil error is any
// other storage failure.
type LogStore interface {
	PutIfAbsent(ctx context.Context, entry *model.StoredLogEntry) (ok bool, err error)
}

// simulated processing cost per character of text, as an exact decimal
var costPerChar = decimal.New(5, -2) // 0.05

// LogProcessor turns one normalized record into exactly one stored entry,
// no matter how many times the record is delivered. The conditional write
// underneath is the system's sole concurrency-correctness mechanism:
// concurrent or retried deliveries of the same (tenant_id, log_id) race on
// it and storage guarantees exactly one winner.
type LogProcessor struct {
	store        LogStore
	delayPerChar time.Duration
	sleep        func(time.Duration)
	now          func() time.Time
}

func NewLogProcessor(store LogStore, delayPerChar time.Duration) *LogProcessor {
	return &LogProcessor{
		store:        store,
		delayPerChar: delayPerChar,
		sleep:        time.Sleep,
		now:          time.Now,
	}
}

// Store persists the redacted copy of rec. Returns OutcomeStored on a new
// write, OutcomeDuplicate when an entry already exists under the same
// (tenant_id, log_id) — the existing entry, including its processed_at, is
// left untouched. Any other storage failure comes back as a transient
// error that the caller must propagate for redelivery.
func (p *LogProcessor) Store(ctx context.Context, rec model.LogRecord) (Outcome, error) {
	textLength := utf8.RuneCountInString(rec.Text)

	if p.delayPerChar > 0 {
		p.sleep(time.Duration(textLength) * p.delayPerChar)
	}

	entry := &model.StoredLogEntry{
		PartitionKey: model.PartitionKeyFor(rec.TenantID),
		SortKey:      model.SortKeyFor(rec.LogID),
		TenantID:     rec.TenantID,
		LogID:        rec.LogID,
		Source:       rec.Source,
		OriginalText: rec.Text,
		ModifiedData: redact.Redact(rec.Text),
		IngestedAt:   rec.Timestamp,
		ProcessedAt:  p.now().UTC().Format(time.RFC3339Nano),
		TextLength:   textLength,

		// 0.05 × text_length as an exact decimal, rounded to 2 places.
		ProcessingTimeSec: decimal.NewFromInt(int64(textLength)).Mul(costPerChar).Round(2),
	}

	ok, err := p.store.PutIfAbsent(ctx, entry)
	if err != nil {
		return 0, apperrors.NewTransientStorage("conditional write failed", err)
	}
	if !ok {
		return OutcomeDuplicate, nil
	}
	return OutcomeStored, nil
}
