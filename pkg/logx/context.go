// SPDX-License-Identifier: Apache-2.0

package logx

import "context"

type contextKey string

// TraceIdKey is the context key holding the trace id of a single kmodctl invocation.
const TraceIdKey contextKey = "traceId"

// WithTraceId returns a copy of ctx carrying the given trace id.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}

// TraceId returns the trace id stored in ctx or an empty string.
func TraceId(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if v, ok := ctx.Value(TraceIdKey).(string); ok {
		return v
	}

	return ""
}
