package logger

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DiagnosticLimit is the longest payload excerpt written to a log line.
const DiagnosticLimit = 200

// RequestIDHeader carries the correlation id back to the caller.
const RequestIDHeader = "X-Request-ID"

var (
	globalLogger *zap.Logger
	once         sync.Once
)

type requestIDKey struct{}

// Init initializes the global logger. In development mode, it uses a
// human-readable console encoder; in production, it uses JSON.
func Init(isDev bool) {
	once.Do(func() {
		var cfg zap.Config
		if isDev {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg = zap.NewProductionConfig()
		}

		var err error
		globalLogger, err = cfg.Build()
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	})
}

// Get returns the global logger singleton. If Init has not been called,
// it falls back to a no-op logger.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// With returns a child logger with the given fields attached.
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithRequestID returns a child logger with a request_id field.
func WithRequestID(requestID string) *zap.Logger {
	return Get().With(zap.String("request_id", requestID))
}

// ContextWithRequestID stores the request id so layers below the HTTP
// handler can log with it.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the global logger tagged with the request id in ctx.
func FromContext(ctx context.Context) *zap.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return WithRequestID(id)
	}
	return Get()
}

// RequestIDMiddleware generates a UUID for each request, stores it in the
// gin context and the request context, and sets the X-Request-ID header.
// A caller-supplied id is kept when it is a valid UUID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// Truncate shortens s to at most limit runes, marking the cut with "...".
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// Sync flushes any buffered log entries. Should be called before the
// application exits.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
