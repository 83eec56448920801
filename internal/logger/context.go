package logger

import (
	"context"

	"go.uber.org/zap"
)

type fieldKey struct{ name string }

var (
	requestIDKey = fieldKey{"request_id"}
	orderIDKey   = fieldKey{"order_id"}
)

// ctxFields lists the context values FromCtx copies onto log entries.
var ctxFields = []fieldKey{requestIDKey, orderIDKey}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithOrderID tags every later log entry for ctx with the order being
// worked on. An empty id leaves ctx unchanged.
func WithOrderID(ctx context.Context, orderID string) context.Context {
	if orderID == "" {
		return ctx
	}
	return context.WithValue(ctx, orderIDKey, orderID)
}

// FromCtx is L() plus whichever of request_id and order_id ctx carries.
func FromCtx(ctx context.Context) *zap.Logger {
	fields := make([]zap.Field, 0, len(ctxFields))
	for _, k := range ctxFields {
		if v := stringValue(ctx, k); v != "" {
			fields = append(fields, zap.String(k.name, v))
		}
	}
	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}

func stringValue(ctx context.Context, k fieldKey) string {
	s, _ := ctx.Value(k).(string)
	return s
}
