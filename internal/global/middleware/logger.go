package middleware

import (
	"bytes"
	"log/slog"
	"time"

	"civic-project-system/internal/global/logger"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	// maxErrorBodySize 失败响应只记录 {message} 的前 2KB
	maxErrorBodySize = 2 << 10
)

// errorBodyWriter 只在状态码 >= 400 时缓存响应体
type errorBodyWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *errorBodyWriter) Write(b []byte) (int, error) {
	if w.Status() >= 400 && w.body.Len() < maxErrorBodySize {
		remaining := maxErrorBodySize - w.body.Len()
		w.body.Write(b[:min(len(b), remaining)])
	}
	return w.ResponseWriter.Write(b)
}

// RequestID 沿用上游传入的请求 ID，否则生成一个
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger 每个请求一条访问日志；5xx 记为 warn，4xx 附带错误消息
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &errorBodyWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := w.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency", time.Since(start).String(),
			"bytes", w.Size(),
		}
		if id, ok := c.Get(requestIDKey); ok {
			attrs = append(attrs, "request_id", id)
		}
		if w.body.Len() > 0 {
			attrs = append(attrs, "error_body", w.body.String())
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelWarn
		}
		logger.WithContext(log, c).Log(c.Request.Context(), level, "HTTP Request", attrs...)
	}
}

// SentryEnrichIP 放在 sentry.Middleware() 之后，上报事件带上 client IP 与请求 ID
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				clientIP := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: clientIP})
				scope.SetTag("client_ip", clientIP)
				if id, ok := c.Get(requestIDKey); ok {
					scope.SetTag("request_id", id.(string))
				}
				if forwardedFor := c.GetHeader("X-Forwarded-For"); forwardedFor != "" {
					scope.SetTag("x_forwarded_for", forwardedFor)
				}
			})
		}
		c.Next()
	}
}
