// Package tracing 把 Sentry 性能追踪接入 GORM、Redis 与对象存储
package tracing

import (
	"context"

	"civic-project-system/config"

	"github.com/getsentry/sentry-go"
)

func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// StartSpan 在 ctx 已有的 transaction 下开启子 span，没有父 span 时返回 nil
// 调用方对返回值使用 Finish 前需判空，或使用 Finish 辅助函数
func StartSpan(ctx context.Context, operation, description string) (*sentry.Span, context.Context) {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return nil, ctx
	}
	span := parent.StartChild(operation)
	span.Description = description
	return span, span.Context()
}

// Finish 根据 err 设置状态后结束 span
func Finish(span *sentry.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}
