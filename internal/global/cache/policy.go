package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	KeyProjects       = "projects"
	KeySingleProject  = "single_project"
	KeyUsers          = "users"
	KeyBarangays      = "barangays"
	KeyAnnouncements  = "announcements"
	KeyContacts       = "contacts"
	KeyUpdates        = "updates"
	KeyMedia          = "media"
	KeyFundingSources = "funding_sources"
	KeyTags           = "tags"
	KeyConversations  = "conversations"
	KeyReactions      = "reactions"
	keyComments       = "comments"
)

// CommentsKey 每个项目一个评论缓存
func CommentsKey(projectID uint) string {
	return fmt.Sprintf("%s:%d", keyComments, projectID)
}

// ConversationsKey 每个用户一个会话列表缓存
func ConversationsKey(userID uint) string {
	return fmt.Sprintf("%s:%d", KeyConversations, userID)
}

// TTL 按键前缀取过期时间
func TTL(key string) time.Duration {
	prefix, _, _ := strings.Cut(key, ":")
	switch prefix {
	case KeyConversations:
		return time.Hour
	case keyComments, KeyReactions:
		return time.Minute
	}
	return 24 * time.Hour
}

// Policy 读穿透与写后失效。缓存故障不影响读，只记日志
//
// 每个键带一个代数，Invalidate 时递增。回填前代数已变化说明 load 期间有写入，
// 这次读到的值可能是旧的，不再写入缓存
type Policy struct {
	cache Cache
	log   *slog.Logger

	mu  sync.Mutex
	gen map[string]uint64
}

func NewPolicy(c Cache, log *slog.Logger) *Policy {
	return &Policy{cache: c, log: log, gen: make(map[string]uint64)}
}

func (p *Policy) generation(key string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen[key]
}

// ReadThrough 命中则解码返回；未命中或解码失败时调用 load 并回填
func ReadThrough[T any](ctx context.Context, p *Policy, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := lookup[T](ctx, p, key); ok {
		return v, nil
	}
	gen := p.generation(key)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	p.store(ctx, key, gen, v)
	return v, nil
}

// identifiable 单项缓存的值必须能报告自身 id
type identifiable interface {
	GetID() uint
}

// ReadSingle single_project 只保存一个条目，命中但 id 不符时清除并视为未命中
func ReadSingle[T any, P interface {
	*T
	identifiable
}](ctx context.Context, p *Policy, key string, id uint, load func(ctx context.Context) (*T, error)) (*T, error) {
	if v, ok := lookup[T](ctx, p, key); ok {
		if P(&v).GetID() == id {
			return &v, nil
		}
		p.Invalidate(ctx, key)
	}
	gen := p.generation(key)
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, gen, v)
	return v, nil
}

func lookup[T any](ctx context.Context, p *Policy, key string) (T, bool) {
	var v T
	raw, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("cache read failed", "key", key, "error", err)
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		p.log.Warn("cache entry undecodable", "key", key, "error", err)
		p.Invalidate(ctx, key)
		return v, false
	}
	return v, true
}

// store 持锁比较代数并写入，Invalidate 递增代数也要拿这把锁
func (p *Policy) store(ctx context.Context, key string, gen uint64, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen[key] != gen {
		p.log.Debug("cache fill skipped, invalidated during load", "key", key)
		return
	}
	if err := p.cache.Set(ctx, key, string(raw), TTL(key)); err != nil {
		p.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate 失效不返回错误，失败记 error 级别日志（会上报 Sentry）
func (p *Policy) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	p.mu.Lock()
	for _, key := range keys {
		p.gen[key]++
	}
	p.mu.Unlock()
	if err := p.cache.Del(ctx, keys...); err != nil {
		p.log.Error("cache invalidation failed", "keys", keys, "error", err)
	}
}
