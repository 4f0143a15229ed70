package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("servicelog")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("servicelog")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceStoreFunction starts a span for a table-store operation.
func TraceStoreFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "tablestore", functionName, attributes...)
}

// TraceReportFunction starts a span for an aggregation/report computation.
func TraceReportFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "reports", functionName, attributes...)
}

// TraceHandlerFunction starts a span for an HTTP handler.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// AttributeTable annotates a span with the table being fetched or written.
func AttributeTable(table string) attribute.KeyValue {
	return attribute.String("store.table", table)
}

// AttributeRowCount annotates a span with the number of rows involved.
func AttributeRowCount(n int) attribute.KeyValue {
	return attribute.Int("store.row_count", n)
}

// AttributePageCount annotates a span with the number of range requests issued.
func AttributePageCount(n int) attribute.KeyValue {
	return attribute.Int("store.page_count", n)
}

// AttributeCacheHit annotates a span with whether the versioned cache served the rows.
func AttributeCacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool("cache.hit", hit)
}
