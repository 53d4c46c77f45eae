package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/loggate/loggate/internal/middleware"
	"github.com/loggate/loggate/internal/model"
	"github.com/loggate/loggate/internal/normalizer"
	"github.com/loggate/loggate/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	records []model.LogRecord
	failErr error
}

func (q *fakeQueue) Enqueue(_ context.Context, rec model.LogRecord) error {
	if q.failErr != nil {
		return q.failErr
	}
	q.records = append(q.records, rec)
	return nil
}

func setupRouter(queue *fakeQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewIngestService(normalizer.New(1000), queue)
	h := NewIngestHandler(svc)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/v1/logs", h.Submit)
	return r
}

func submit(r *gin.Engine, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/logs", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitJSON(t *testing.T) {
	queue := &fakeQueue{}
	r := setupRouter(queue)

	w := submit(r, "application/json", `{"tenant_id":"tenant-alpha","text":"User login"}`, nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Accepted", resp["message"])
	assert.Equal(t, "tenant-alpha", resp["tenant_id"])
	assert.NotEmpty(t, resp["log_id"])

	require.Len(t, queue.records, 1)
	assert.Equal(t, model.SourceJSON, queue.records[0].Source)
	assert.Equal(t, "User login", queue.records[0].Text)
}

func TestSubmitJSONKeepsCallerLogID(t *testing.T) {
	queue := &fakeQueue{}
	r := setupRouter(queue)

	w := submit(r, "application/json", `{"tenant_id":"t1","log_id":"log-7","text":"x"}`, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, queue.records, 1)
	assert.Equal(t, "log-7", queue.records[0].LogID)
}

func TestSubmitPlainText(t *testing.T) {
	queue := &fakeQueue{}
	r := setupRouter(queue)

	w := submit(r, "text/plain", "raw log line", map[string]string{"X-Tenant-Id": "tenant_b"})
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, queue.records, 1)
	assert.Equal(t, model.SourceText, queue.records[0].Source)
	assert.Equal(t, "tenant_b", queue.records[0].TenantID)
}

func TestSubmitUnsupportedContentType(t *testing.T) {
	queue := &fakeQueue{}
	r := setupRouter(queue)

	w := submit(r, "application/xml", "<log/>", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, queue.records)
}

func TestSubmitInvalidJSON(t *testing.T) {
	queue := &fakeQueue{}
	r := setupRouter(queue)

	w := submit(r, "application/json", "not-json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitMissingTenant(t *testing.T) {
	queue := &fakeQueue{}
	r := setupRouter(queue)

	w := submit(r, "application/json", `{"text":"orphan"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = submit(r, "text/plain", "no tenant header", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitQueueUnavailable(t *testing.T) {
	queue := &fakeQueue{failErr: errors.New("connection refused")}
	r := setupRouter(queue)

	w := submit(r, "application/json", `{"tenant_id":"t1","text":"x"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
