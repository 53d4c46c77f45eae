package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/redact"
	"github.com/loggate/loggate/internal/service"
)

const (
	ContextAuditLog  = "audit_log"
	ContextTenantKey = "tenant_id"
)

// bodyLogWriter wraps the ResponseWriter to capture the response body
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// AuditMiddleware records every request asynchronously. Bodies can carry
// raw log text, so both request and response go through the PII redaction
// engine before they are persisted anywhere.
func AuditMiddleware(auditSvc *service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.New().String()
		c.Header("X-Request-ID", reqID)

		// read the request body, then put it back for the handler's Bind
		var reqBodyBytes []byte
		if c.Request.Body != nil {
			reqBodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
		}

		auditEntry := &model.AuditLog{
			ID:        reqID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			CreatedAt: start,
			Context:   make(map[string]interface{}),
		}
		c.Set(ContextAuditLog, auditEntry)

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if tenantVal, exists := c.Get(ContextTenantKey); exists {
			if tenantID, ok := tenantVal.(string); ok {
				auditEntry.TenantID = tenantID
			}
		}

		auditEntry.RequestBody = redact.Redact(string(reqBodyBytes))
		auditEntry.StatusCode = c.Writer.Status()
		auditEntry.ResponseBody = redact.Redact(blw.body.String())
		auditEntry.LatencyMs = time.Since(start).Milliseconds()

		auditSvc.Log(auditEntry)
	}
}

// AddAuditContext lets handlers attach business context (e.g. the assigned
// log_id) to the current request's audit entry.
func AddAuditContext(c *gin.Context, key string, value interface{}) {
	if val, exists := c.Get(ContextAuditLog); exists {
		if entry, ok := val.(*model.AuditLog); ok {
			entry.Context[key] = value
		}
	}
}
