package model

import (
	"time"
)

// AuditLog records one front-door request: who submitted, what was accepted
// or rejected, and how long it took. Bodies are PII-redacted before they
// reach this struct.
type AuditLog struct {
	ID        string `json:"id"` // request ID (UUID), echoed in X-Request-ID
	TenantID  string `json:"tenant_id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	RequestBody  string `json:"request_body"`
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Context carries handler-supplied extras, e.g. the assigned log_id.
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
