package tracing

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"civic-project-system/config"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
)

// RedisHook 实现 redis.Hook，缓存命令与 pipeline 各自一个 span
type RedisHook struct {
	slowThreshold time.Duration
}

func NewRedisHook() *RedisHook {
	ms := config.Get().Sentry.Tracing.RedisSlowThresholdMs
	return &RedisHook{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (h *RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		span, ctx := StartSpan(ctx, "cache.redis", strings.ToUpper(cmd.Name()))
		if span != nil {
			span.SetData("db.system", "redis")
			span.SetData("db.operation", cmd.Name())
		}

		err := next(ctx, cmd)

		h.finish(span, start, err)
		return err
	}
}

func (h *RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		span, ctx := StartSpan(ctx, "cache.redis.pipeline", pipelineDescription(cmds))
		if span != nil {
			span.SetData("db.system", "redis")
			span.SetData("redis.pipeline_length", len(cmds))
		}

		err := next(ctx, cmds)

		h.finish(span, start, err)
		return err
	}
}

func (h *RedisHook) finish(span *sentry.Span, start time.Time, err error) {
	if span == nil {
		return
	}
	if h.slowThreshold > 0 && time.Since(start) < h.slowThreshold {
		span.Sampled = sentry.SampledFalse
	}
	// 缓存未命中不算错误
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	Finish(span, err)
}

// pipelineDescription 只列出前三个命令名
func pipelineDescription(cmds []redis.Cmder) string {
	if len(cmds) == 0 {
		return "PIPELINE (empty)"
	}
	const maxShow = 3
	names := make([]string, 0, maxShow)
	for _, cmd := range cmds[:min(len(cmds), maxShow)] {
		names = append(names, strings.ToUpper(cmd.Name()))
	}
	desc := "PIPELINE: " + strings.Join(names, ", ")
	if len(cmds) > maxShow {
		desc += "..."
	}
	return desc
}
