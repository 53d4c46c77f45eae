package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLogStore is an in-memory conditional store: first write per key
// wins, later writes report the condition failure.
type fakeLogStore struct {
	entries map[string]*model.StoredLogEntry
	failErr error
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{entries: make(map[string]*model.StoredLogEntry)}
}

func (s *fakeLogStore) PutIfAbsent(_ context.Context, entry *model.StoredLogEntry) (bool, error) {
	if s.failErr != nil {
		return false, s.failErr
	}
	key := entry.PartitionKey + "|" + entry.SortKey
	if _, exists := s.entries[key]; exists {
		return false, nil
	}
	s.entries[key] = entry
	return true, nil
}

func newTestProcessor(store LogStore) *LogProcessor {
	p := NewLogProcessor(store, 0)
	p.now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
	return p
}

func sampleRecord() model.LogRecord {
	return model.LogRecord{
		TenantID:  "tenant-alpha",
		LogID:     "log-12345",
		Text:      "User login successful",
		Source:    model.SourceJSON,
		Timestamp: "2024-01-15T10:29:00Z",
	}
}

func TestStoreThenDuplicate(t *testing.T) {
	store := newFakeLogStore()
	p := newTestProcessor(store)

	out, err := p.Store(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStored, out)

	out, err = p.Store(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, out)

	require.Len(t, store.entries, 1)
	entry := store.entries["TENANT#tenant-alpha|LOG#log-12345"]
	require.NotNil(t, entry)
	assert.Equal(t, "User login successful", entry.OriginalText)
	assert.Equal(t, "2024-01-15T10:29:00Z", entry.IngestedAt)
}

func TestTenantIsolationOnLogIDCollision(t *testing.T) {
	store := newFakeLogStore()
	p := newTestProcessor(store)

	recA := sampleRecord()
	recA.TenantID = "A"
	recA.LogID = "X"
	recB := sampleRecord()
	recB.TenantID = "B"
	recB.LogID = "X"

	outA, err := p.Store(context.Background(), recA)
	require.NoError(t, err)
	outB, err := p.Store(context.Background(), recB)
	require.NoError(t, err)

	assert.Equal(t, OutcomeStored, outA)
	assert.Equal(t, OutcomeStored, outB)
	assert.Len(t, store.entries, 2)
}

func TestStoreRedactsText(t *testing.T) {
	store := newFakeLogStore()
	p := newTestProcessor(store)

	rec := sampleRecord()
	rec.Text = "Contact: 123-456-7890 at 192.168.1.1"
	_, err := p.Store(context.Background(), rec)
	require.NoError(t, err)

	entry := store.entries["TENANT#tenant-alpha|LOG#log-12345"]
	require.NotNil(t, entry)
	assert.Equal(t, "Contact: 123-456-7890 at 192.168.1.1", entry.OriginalText)
	assert.Equal(t, "Contact: [REDACTED] at [IP_REDACTED]", entry.ModifiedData)
}

func TestStoreTextMetrics(t *testing.T) {
	store := newFakeLogStore()
	p := newTestProcessor(store)

	rec := sampleRecord()
	rec.Text = "12345678901234567890" // 20 characters
	_, err := p.Store(context.Background(), rec)
	require.NoError(t, err)

	entry := store.entries["TENANT#tenant-alpha|LOG#log-12345"]
	require.NotNil(t, entry)
	assert.Equal(t, 20, entry.TextLength)
	assert.True(t, entry.ProcessingTimeSec.Equal(decimal.RequireFromString("1.00")),
		"got %s", entry.ProcessingTimeSec)
}

func TestStoreEmptyTextMetrics(t *testing.T) {
	store := newFakeLogStore()
	p := newTestProcessor(store)

	rec := sampleRecord()
	rec.Text = ""
	_, err := p.Store(context.Background(), rec)
	require.NoError(t, err)

	entry := store.entries["TENANT#tenant-alpha|LOG#log-12345"]
	require.NotNil(t, entry)
	assert.Equal(t, 0, entry.TextLength)
	assert.True(t, entry.ProcessingTimeSec.IsZero())
}

func TestStoreClassifiesStorageFailureAsTransient(t *testing.T) {
	store := newFakeLogStore()
	store.failErr = errors.New("throughput exceeded")
	p := newTestProcessor(store)

	_, err := p.Store(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
	assert.False(t, apperrors.IsMalformed(err))
}

func TestStoreSimulatedDelayScalesWithText(t *testing.T) {
	store := newFakeLogStore()
	p := NewLogProcessor(store, 50*time.Millisecond)

	var slept time.Duration
	p.sleep = func(d time.Duration) { slept = d }
	p.now = time.Now

	rec := sampleRecord()
	rec.Text = "abcd"
	_, err := p.Store(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, slept)
}
