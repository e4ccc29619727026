// Package ctxutil carries request-scoped identifiers through a context.
package ctxutil

import "context"

type traceKey struct{}

// TraceData identifies the request a context belongs to.
type TraceData struct {
	TraceID   string
	RequestID string
}

// Fields returns the ids as logger key/value pairs; nil-safe.
func (td *TraceData) Fields() []interface{} {
	if td == nil {
		return nil
	}
	return []interface{}{"trace_id", td.TraceID, "request_id", td.RequestID}
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceKey{}, td)
}

// GetTraceData returns nil when ctx carries no ids, e.g. in CLI runs.
func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceKey{}).(*TraceData)
	return td
}

// LogFields is GetTraceData(ctx).Fields().
func LogFields(ctx context.Context) []interface{} {
	return GetTraceData(ctx).Fields()
}
