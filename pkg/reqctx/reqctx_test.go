package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestCaller(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsAuthenticated(ctx))
	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Panics(t, func() { MustCaller(ctx) })

	id := uuid.New()
	ctx = WithCaller(ctx, &Caller{UserID: id, SessionID: uuid.New(), Role: "patient"})
	assert.True(t, IsAuthenticated(ctx))
	got, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "patient", MustCaller(ctx).Role)
}

func TestRequestMetaAndTrace(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(ctx))

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1"})
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	tr := NewTrace()
	assert.Len(t, tr.TraceID, 32)
	assert.Len(t, tr.SpanID, 16)
	assert.NotEqual(t, tr.TraceID, NewTrace().TraceID)

	ctx = WithTrace(ctx, tr)
	assert.Equal(t, tr.TraceID, TraceIDFromContext(ctx))
}

func TestTraceIDPrefersSpan(t *testing.T) {
	traceID := trace.TraceID{0x0a, 0x0b}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{0x01}})
	ctx := trace.ContextWithSpanContext(WithTrace(context.Background(), NewTrace()), sc)

	assert.Equal(t, traceID.String(), TraceIDFromContext(ctx))
}
