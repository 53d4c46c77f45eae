package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/loggate/loggate/internal/middleware"
	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/pkg/apperrors"
	"github.com/loggate/loggate/internal/service"
)

const HeaderTenantID = "X-Tenant-Id"

type IngestHandler struct {
	svc *service.IngestService
}

func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// Submit accepts a log record as application/json ({tenant_id, log_id?,
// text}) or text/plain (raw body, tenant from X-Tenant-Id). The record is
// normalized and enqueued; 202 means durably queued, not processed.
func (h *IngestHandler) Submit(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(apperrors.NewInvalidRequest("failed to read request body"))
		return
	}

	var rec model.LogRecord
	contentType := c.ContentType()
	switch {
	case strings.Contains(contentType, "application/json"):
		rec, err = h.svc.SubmitJSON(c.Request.Context(), body)
	case strings.Contains(contentType, "text/plain"):
		rec, err = h.svc.SubmitText(c.Request.Context(), c.GetHeader(HeaderTenantID), body)
	default:
		c.Error(apperrors.NewInvalidRequest("Unsupported Content-Type"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.Set(middleware.ContextTenantKey, rec.TenantID)
	middleware.AddAuditContext(c, "log_id", rec.LogID)

	c.JSON(http.StatusAccepted, gin.H{
		"message":   "Accepted",
		"log_id":    rec.LogID,
		"tenant_id": rec.TenantID,
	})
}
