package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/tgroups/internal/config"
	"github.com/turtacn/tgroups/internal/infrastructure/monitoring"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/logger"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var fromCtx string
	router.GET("/x", func(c *gin.Context) {
		fromCtx, _ = c.Request.Context().Value(constants.ContextKeyRequestID).(string)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestObservabilityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	tracing, err := monitoring.NewTracingManager(config.TracingConfig{}, logger.NewNoopLogger())
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID(), ObservabilityMiddleware(tracing, metrics))
	var traceID string
	router.GET("/test", func(c *gin.Context) {
		traceID = c.GetString(string(constants.ContextKeyTraceID))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// without a tracer provider the request id stands in for the trace id
	assert.Equal(t, w.Header().Get(RequestIDHeader), traceID)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.HTTPRequests))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/test", "2xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPActiveRequests))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(logger.NewNoopLogger()))
	cleaned := false
	router.GET("/boom", func(c *gin.Context) {
		defer func() { cleaned = true }()
		panic(errors.New("boom"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error","code":"server_error"}`, w.Body.String())
	assert.True(t, cleaned)
}
