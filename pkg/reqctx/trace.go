package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"go.opentelemetry.io/otel/trace"
)

// Trace correlates log lines of one unit of work that has no HTTP request
// behind it, such as a worker handling a broker message.
type Trace struct {
	TraceID string // 32 hex chars
	SpanID  string // 16 hex chars
}

func NewTrace() *Trace {
	return &Trace{TraceID: randomHex(16), SpanID: randomHex(8)}
}

func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, keyTrace, t)
}

func TraceFromContext(ctx context.Context) (*Trace, bool) {
	t, ok := ctx.Value(keyTrace).(*Trace)
	return t, ok && t != nil
}

// TraceIDFromContext prefers an OpenTelemetry span in ctx, then a Trace set
// by WithTrace. It returns "" when neither is present.
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if t, ok := TraceFromContext(ctx); ok {
		return t.TraceID
	}
	return ""
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
