package model

import (
	"github.com/shopspring/decimal"
)

// Source tags describing how a record entered the system.
const (
	SourceJSON = "json"
	SourceText = "text"
)

// LogRecord is the canonical record shape every producer normalizes to
// before enqueueing. Fields are set once at ingestion and never mutated.
type LogRecord struct {
	TenantID  string `json:"tenant_id"`
	LogID     string `json:"log_id"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"` // producer acceptance time, passed through unmodified
}

// Envelope is the queue delivery unit: one LogRecord serialized as a JSON
// string in Body, mirroring the SQS record shape.
type Envelope struct {
	Body string `json:"body"`
}

// Delivery pairs a decoded envelope with the raw payload as delivered by
// the queue; acknowledgment matches on the raw bytes.
type Delivery struct {
	Raw      string
	Envelope Envelope
}

// StoredLogEntry is the persisted representation. Exactly one entry ever
// exists per (tenant_id, log_id); entries are created once and never
// updated or deleted by this subsystem.
type StoredLogEntry struct {
	PartitionKey string `db:"partition_key" json:"pk"`
	SortKey      string `db:"sort_key" json:"sk"`
	TenantID     string `db:"tenant_id" json:"tenant_id"`
	LogID        string `db:"log_id" json:"log_id"`
	Source       string `db:"source" json:"source"`
	OriginalText string `db:"original_text" json:"original_text"`
	ModifiedData string `db:"modified_data" json:"modified_data"`
	IngestedAt   string `db:"ingested_at" json:"ingested_at"`
	ProcessedAt  string `db:"processed_at" json:"processed_at"`
	TextLength   int    `db:"text_length" json:"text_length"`

	// ProcessingTimeSec is stored as an exact decimal, rounded to 2 places.
	// A binary float would drift in the storage layer.
	ProcessingTimeSec decimal.Decimal `db:"processing_time_sec" json:"processing_time_sec"`
}

// PartitionKeyFor and SortKeyFor derive the composite storage identity.
// Prefixing the tenant into the partition key is what keeps one tenant's
// entries unreachable through another tenant's keys.
func PartitionKeyFor(tenantID string) string {
	return "TENANT#" + tenantID
}

func SortKeyFor(logID string) string {
	return "LOG#" + logID
}

// BatchResult aggregates per-record outcomes of one batch invocation.
// Total always equals the number of envelopes delivered, even when the
// invocation aborts early on a transient storage failure.
type BatchResult struct {
	Processed         int `json:"processed"`
	SkippedDuplicates int `json:"skipped_duplicates"`
	Errors            int `json:"errors"`
	Total             int `json:"total"`
}
