package sentry

import (
	"fmt"
	"strconv"
	"time"

	"civic-project-system/config"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// CodedError 带状态码的错误，用于判断是否需要上报
type CodedError interface {
	error
	GetCode() int32
}

// identified 由 jwt.Claims 实现
type identified interface {
	GetUserID() uint
	GetRole() string
}

// Init 未配置 DSN 时跳过
func Init() error {
	cfg := config.Get()
	if cfg.Sentry.Dsn == "" {
		return nil
	}

	tracesSampleRate := cfg.Sentry.SampleRate
	if tracesSampleRate <= 0 {
		tracesSampleRate = 1.0
	}
	environment := cfg.Sentry.Environment
	if environment == "" {
		environment = string(cfg.Mode)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.Dsn,
		Environment:      environment,
		Release:          "civic-project-system@1.0.0",
		SampleRate:       1.0, // 错误事件不采样
		EnableTracing:    true,
		TracesSampleRate: tracesSampleRate,
		EnableLogs:       true,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

// Middleware 未配置 DSN 时返回空中间件
func Middleware() gin.HandlerFunc {
	if config.Get().Sentry.Dsn == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return sentrygin.New(sentrygin.Options{
		Repanic:         true, // 交给后续的 Recovery 处理
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// CaptureException 只上报 5xx，业务错误不上报
func CaptureException(c *gin.Context, err error) {
	if config.Get().Sentry.Dsn == "" || !shouldReport(err) {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetTag("path", c.FullPath())
		scope.SetTag("method", c.Request.Method)
		if payload, ok := c.Get("payload"); ok {
			if who, ok := payload.(identified); ok {
				scope.SetUser(sentry.User{ID: strconv.FormatUint(uint64(who.GetUserID()), 10)})
				scope.SetTag("role", who.GetRole())
			}
		}
		hub.CaptureException(err)
	})
}

// CaptureMessage 后台任务没有请求上下文，使用全局 hub
func CaptureMessage(message string) {
	if config.Get().Sentry.Dsn == "" {
		return
	}
	sentry.CaptureMessage(message)
}

func shouldReport(err error) bool {
	if e, ok := err.(CodedError); ok {
		return e.GetCode() >= 500 && e.GetCode() < 600
	}
	return true
}

// Flush 退出前调用
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
