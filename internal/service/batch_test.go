package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/loggate/loggate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore answers PutIfAbsent calls from a fixed script of outcomes.
type scriptedStore struct {
	script []scriptedPut
	calls  []*model.StoredLogEntry
}

type scriptedPut struct {
	ok  bool
	err error
}

func (s *scriptedStore) PutIfAbsent(_ context.Context, entry *model.StoredLogEntry) (bool, error) {
	s.calls = append(s.calls, entry)
	if len(s.calls) > len(s.script) {
		return true, nil
	}
	step := s.script[len(s.calls)-1]
	return step.ok, step.err
}

func envelopeFor(t *testing.T, tenantID, logID, text string) model.Envelope {
	t.Helper()
	body, err := json.Marshal(model.LogRecord{
		TenantID:  tenantID,
		LogID:     logID,
		Text:      text,
		Source:    model.SourceJSON,
		Timestamp: "2024-01-15T10:30:00Z",
	})
	require.NoError(t, err)
	return model.Envelope{Body: string(body)}
}

func newBatch(store LogStore) *BatchProcessor {
	return NewBatchProcessor(NewLogProcessor(store, 0))
}

func TestProcessBatchAllStored(t *testing.T) {
	store := newFakeLogStore()
	b := newBatch(store)

	envs := []model.Envelope{
		envelopeFor(t, "t1", "a", "one"),
		envelopeFor(t, "t1", "b", "two"),
		envelopeFor(t, "t1", "c", "three"),
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{Processed: 3, Total: 3}, result)
	assert.Len(t, store.entries, 3)
}

func TestProcessBatchMalformedRecordDoesNotBlockSiblings(t *testing.T) {
	store := newFakeLogStore()
	b := newBatch(store)

	envs := []model.Envelope{
		envelopeFor(t, "t1", "a", "one"),
		{Body: "not-json"},
		envelopeFor(t, "t1", "c", "three"),
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err, "malformed records must not trigger redelivery")
	assert.Equal(t, model.BatchResult{Processed: 2, Errors: 1, Total: 3}, result)
	assert.Len(t, store.entries, 2)
}

func TestProcessBatchMissingFieldIsMalformed(t *testing.T) {
	store := newFakeLogStore()
	b := newBatch(store)

	// valid JSON but no text field at all
	envs := []model.Envelope{
		{Body: `{"tenant_id":"t1","log_id":"a","source":"json","timestamp":"2024-01-15T10:30:00Z"}`},
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{Errors: 1, Total: 1}, result)
	assert.Empty(t, store.entries)
}

func TestProcessBatchEmptyLogIDIsValid(t *testing.T) {
	store := newFakeLogStore()
	b := newBatch(store)

	envs := []model.Envelope{
		{Body: `{"tenant_id":"t1","log_id":"","text":"x","source":"json","timestamp":"2024-01-15T10:30:00Z"}`},
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{Processed: 1, Total: 1}, result)
	assert.Contains(t, store.entries, "TENANT#t1|LOG#")
}

func TestProcessBatchAbsentLogIDIsMalformed(t *testing.T) {
	store := newFakeLogStore()
	b := newBatch(store)

	envs := []model.Envelope{
		{Body: `{"tenant_id":"t1","text":"x","source":"json","timestamp":"2024-01-15T10:30:00Z"}`},
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{Errors: 1, Total: 1}, result)
	assert.Empty(t, store.entries)
}

func TestProcessBatchEmptyTextIsValid(t *testing.T) {
	store := newFakeLogStore()
	b := newBatch(store)

	envs := []model.Envelope{envelopeFor(t, "t1", "a", "")}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{Processed: 1, Total: 1}, result)
}

func TestProcessBatchTransientFailureAbortsRemainder(t *testing.T) {
	store := &scriptedStore{script: []scriptedPut{
		{ok: true},
		{err: errors.New("storage unavailable")},
		{ok: true}, // must never be reached
	}}
	b := newBatch(store)

	envs := []model.Envelope{
		envelopeFor(t, "t1", "a", "one"),
		envelopeFor(t, "t1", "b", "two"),
		envelopeFor(t, "t1", "c", "three"),
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.Error(t, err, "transient failures must propagate for redelivery")
	assert.Equal(t, model.BatchResult{Processed: 1, Errors: 1, Total: 3}, result)
	assert.Len(t, store.calls, 2, "record 3 must never be attempted")
}

func TestProcessBatchDuplicateCounting(t *testing.T) {
	store := &scriptedStore{script: []scriptedPut{
		{ok: true}, {ok: true}, {ok: false}, {ok: true}, {ok: false},
	}}
	b := newBatch(store)

	envs := make([]model.Envelope, 5)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		envs[i] = envelopeFor(t, "t1", id, "text")
	}
	result, err := b.ProcessBatch(context.Background(), envs)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{Processed: 3, SkippedDuplicates: 2, Total: 5}, result)
}

func TestProcessBatchEmpty(t *testing.T) {
	b := newBatch(newFakeLogStore())
	result, err := b.ProcessBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{}, result)
}
