// Package normalizer converts heterogeneous inbound payloads into the one
// canonical LogRecord shape the worker consumes. Everything downstream of
// the queue assumes these guarantees already hold.
package normalizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/pkg/apperrors"
)

const maxLogIDLength = 100

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

type Normalizer struct {
	maxTextChars int
	now          func() time.Time
}

func New(maxTextChars int) *Normalizer {
	if maxTextChars <= 0 {
		maxTextChars = 10000
	}
	return &Normalizer{
		maxTextChars: maxTextChars,
		now:          time.Now,
	}
}

type jsonPayload struct {
	TenantID string `json:"tenant_id"`
	LogID    string `json:"log_id"`
	Text     string `json:"text"`
}

// FromJSON normalizes an application/json submission. A missing log_id gets
// a generated UUID.
func (n *Normalizer) FromJSON(body []byte) (model.LogRecord, error) {
	var payload jsonPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.LogRecord{}, apperrors.NewInvalidRequest("Invalid JSON")
	}
	return n.normalize(payload.TenantID, payload.LogID, payload.Text, model.SourceJSON)
}

// FromText normalizes a text/plain submission; the tenant comes from the
// X-Tenant-Id header and the log id is always generated.
func (n *Normalizer) FromText(tenantID string, body []byte) (model.LogRecord, error) {
	return n.normalize(tenantID, "", string(body), model.SourceText)
}

func (n *Normalizer) normalize(tenantID, logID, text, source string) (model.LogRecord, error) {
	if tenantID == "" || text == "" {
		return model.LogRecord{}, apperrors.NewInvalidRequest("Missing tenant_id or text")
	}
	if !tenantIDPattern.MatchString(tenantID) {
		return model.LogRecord{}, apperrors.NewInvalidRequest("Invalid tenant_id")
	}
	if utf8.RuneCountInString(text) > n.maxTextChars {
		return model.LogRecord{}, apperrors.NewInvalidRequest(
			fmt.Sprintf("text exceeds %d characters", n.maxTextChars))
	}
	if logID == "" {
		logID = uuid.New().String()
	} else if len(logID) > maxLogIDLength {
		return model.LogRecord{}, apperrors.NewInvalidRequest("log_id too long")
	}

	return model.LogRecord{
		TenantID:  tenantID,
		LogID:     logID,
		Text:      text,
		Source:    source,
		Timestamp: n.now().UTC().Format(time.RFC3339Nano),
	}, nil
}
