package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/tgroups/internal/infrastructure/monitoring"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
)

// ObservabilityMiddleware returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// For each HTTP request, it starts a server span and records request totals, duration and in-flight count.
// The metrics are labeled with the HTTP method, the route template and the status class.
// ObservabilityMiddleware 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 对于每个 HTTP 请求，它会启动一个服务端跟踪范围并记录请求总数、耗时和并发数。
func ObservabilityMiddleware(tracing *monitoring.TracingManager, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.ActiveRequestsInc()
		defer metrics.ActiveRequestsDec()

		// the route template keeps label cardinality low
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}

		ctx := tracing.ExtractTraceContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracing.StartSpan(ctx, c.Request.Method+" "+path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethodKey.String(c.Request.Method),
				semconv.HTTPRouteKey.String(path),
			),
		)
		defer span.End()

		traceID := tracing.GetTraceID(ctx)
		if traceID == "" {
			traceID = c.GetString(string(constants.ContextKeyRequestID))
		}
		c.Set(string(constants.ContextKeyTraceID), traceID)
		c.Request = c.Request.WithContext(context.WithValue(ctx, constants.ContextKeyTraceID, traceID))

		c.Next()

		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, path, status, time.Since(start))

		span.SetAttributes(
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if last := c.Errors.Last(); last != nil && errors.ShouldLogError(last.Err) {
			tracing.RecordError(ctx, last.Err, semconv.HTTPStatusCodeKey.Int(status))
		} else if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
