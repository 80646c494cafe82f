package middleware

import (
	"bytes"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VisitorHeader carries the anonymous browser id used for audio preferences.
const VisitorHeader = "X-Visitor-ID"

// Context keys handlers set so the access log records what a submission did.
const (
	SubmissionKindKey = "submission_kind"
	StoreErrorCodeKey = "store_error_code"
)

// maxLoggedBody caps how much of an error response is copied into the log.
const maxLoggedBody = 2 << 10

// RequestIDMiddleware tags the request with X-Request-ID, minting one when
// the client sent none, and picks up the visitor id.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set("X-Request-ID", rid)

		if visitor := c.Request.Header.Get(VisitorHeader); visitor != "" {
			c.Set("visitor_id", visitor)
		}
		c.Next()
	}
}

// errorBodyWriter copies the start of 4xx and 5xx bodies. Successful
// responses, including event streams, pass through untouched.
type errorBodyWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *errorBodyWriter) Write(b []byte) (int, error) {
	if w.Status() >= 400 && w.body.Len() < maxLoggedBody {
		n := min(len(b), maxLoggedBody-w.body.Len())
		w.body.Write(b[:n])
	}
	return w.ResponseWriter.Write(b)
}

func accessFields(c *gin.Context, start time.Time) []interface{} {
	fields := []interface{}{
		"request_id", c.GetString("request_id"),
		"method", c.Request.Method,
		"route", c.FullPath(),
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
	}
	if q := c.Request.URL.RawQuery; q != "" {
		fields = append(fields, "query", q)
	}
	if visitor := c.GetString("visitor_id"); visitor != "" {
		fields = append(fields, "visitor_id", visitor)
	}
	if kind := c.GetString(SubmissionKindKey); kind != "" {
		fields = append(fields, "submission", kind)
	}
	if code := c.GetString(StoreErrorCodeKey); code != "" {
		fields = append(fields, "store_error_code", code)
	}
	return fields
}

// RequestLoggingMiddleware writes one access line per request. Submissions
// are logged with their kind, and failed writes with the content store's
// error code, so moderation problems can be traced from the log alone.
func RequestLoggingMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &errorBodyWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		fields := accessFields(c, start)
		switch status := w.Status(); {
		case status >= 500:
			logger.Errorw("request completed with server error", append(fields, "response", w.body.String())...)
		case status >= 400:
			logger.Warnw("request completed with client error", append(fields, "response", w.body.String())...)
		case c.GetString(SubmissionKindKey) != "":
			logger.Infow("submission stored", fields...)
		default:
			logger.Infow("request completed", fields...)
		}
	}
}

// RecoveryMiddleware turns a panic into a 500 and logs the stack.
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"request_id", c.GetString("request_id"),
					"panic", r,
					"stack", string(debug.Stack()),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error", "request_id": c.GetString("request_id")})
			}
		}()
		c.Next()
	}
}
