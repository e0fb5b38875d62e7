package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/moldshop/backend/internal/infrastructure/telemetry"
)

// setupTestTracer swaps the global tracer provider for one backed by an
// in-memory span recorder and restores it on cleanup.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attributeMap(spans []sdktrace.ReadOnlySpan, t *testing.T) map[string]interface{} {
	t.Helper()
	require.Len(t, spans, 1)

	attrMap := make(map[string]interface{})
	for _, attr := range spans[0].Attributes() {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}
	return attrMap
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ledger.record_movement", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "lot.allocate",
		telemetry.WithAttribute("material_code", "PP-GF30"),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Equal(t, "PP-GF30", attributeMap(spans, t)["material_code"])
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "stock_movement", "record")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "stock_movement.record", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "mrp.explode_bom")
	telemetry.SetAttributes(span,
		"product_code", "HOUSING-A1",
		"component_count", 42,
		"cycle_free", true,
	)
	span.End()

	attrs := attributeMap(sr.Ended(), t)
	assert.Equal(t, "HOUSING-A1", attrs["product_code"])
	assert.Equal(t, int64(42), attrs["component_count"])
	assert.Equal(t, true, attrs["cycle_free"])
}

func TestSetAttribute(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "planning.create_order")
	telemetry.SetAttribute(span, "order_number", "PO-2026-0101")
	span.End()

	assert.Equal(t, "PO-2026-0101", attributeMap(sr.Ended(), t)["order_number"])
}

func TestSetAttribute_WithUUID(t *testing.T) {
	sr := setupTestTracer(t)

	// uuid.UUID goes through fmt.Stringer
	orderID := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "planning.create_order")
	telemetry.SetAttribute(span, "order_id", orderID)
	span.End()

	assert.Equal(t, orderID.String(), attributeMap(sr.Ended(), t)["order_id"])
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insufficient stock", spans[0].Status().Description)

	events := spans[0].Events()
	require.GreaterOrEqual(t, len(events), 1)
	assert.Equal(t, "exception", events[0].Name)
}

func TestRecordError_NilError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSetOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "lot.allocate")
	telemetry.AddEvent(span, "lot_reserved",
		"lot_number", "LOT-2026-0142",
		"quantity", 10,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "lot_reserved", events[0].Name)

	attrMap := make(map[string]interface{})
	for _, attr := range events[0].Attributes {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "LOT-2026-0142", attrMap["lot_number"])
	assert.Equal(t, int64(10), attrMap["quantity"])
}

func TestSpanFromContext(t *testing.T) {
	setupTestTracer(t)

	// no span recorded yet yields a usable no-op span
	span := telemetry.SpanFromContext(context.Background())
	assert.NotNil(t, span)

	ctx, created := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	defer created.End()

	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, created.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestGetTraceID(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	defer span.End()

	traceID := telemetry.GetTraceID(ctx)
	assert.Len(t, traceID, 32) // 16 bytes hex-encoded
}

func TestGetSpanID(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	defer span.End()

	spanID := telemetry.GetSpanID(ctx)
	assert.Len(t, spanID, 16) // 8 bytes hex-encoded
}

func TestContextWithSpan(t *testing.T) {
	setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	defer span.End()

	ctx := telemetry.ContextWithSpan(context.Background(), span)

	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, span.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestNestedSpans(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parentSpan := telemetry.StartSpan(context.Background(), "mrp.plan_order")
	_, childSpan := telemetry.StartSpan(ctx, "mrp.explode_bom")
	childSpan.End()
	parentSpan.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	var parent, child sdktrace.ReadOnlySpan
	for _, s := range spans {
		switch s.Name() {
		case "mrp.plan_order":
			parent = s
		case "mrp.explode_bom":
			child = s
		}
	}
	require.NotNil(t, parent, "parent span not found")
	require.NotNil(t, child, "child span not found")

	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("boom"))
		telemetry.SetAttributes(nil, "key", "value")
		telemetry.SetAttribute(nil, "key", "value")
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "event_name", "key", "value")
	})
}

func TestAttributeTypes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
	telemetry.SetAttributes(span,
		"string", "value",
		"int", 42,
		"int64", int64(100),
		"float64", 3.14,
		"bool", true,
		"string_slice", []string{"a", "b"},
		"int_slice", []int{1, 2, 3},
		"int64_slice", []int64{10, 20},
		"float64_slice", []float64{1.1, 2.2},
		"bool_slice", []bool{true, false},
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.GreaterOrEqual(t, len(spans[0].Attributes()), 10)
}

func TestSetAttributes_MalformedPairs(t *testing.T) {
	sr := setupTestTracer(t)

	t.Run("odd trailing key is dropped", func(t *testing.T) {
		_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
		telemetry.SetAttributes(span,
			"key1", "value1",
			"key2", "value2",
			"orphan_key",
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Len(t, spans[0].Attributes(), 2)
	})

	t.Run("non-string key skips the pair", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "ledger.record_movement")
		telemetry.SetAttributes(span,
			"valid_key", "value",
			123, "value for bad key",
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Len(t, spans[0].Attributes(), 1)
	})
}
