// Package container 持有启动时构造的客户端与服务，模块从这里取依赖
package container

import (
	"log/slog"

	"civic-project-system/config"
	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/service/conversation"
	"civic-project-system/internal/service/engagement"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/project"
	"civic-project-system/internal/service/reaction"
	"civic-project-system/internal/store"
)

type Container struct {
	Config  *config.Config
	Store   store.Store
	Objects objectstore.Store
	Cache   *cache.Policy

	Media         *media.Manager
	Reactions     *reaction.Engine
	Engagement    *engagement.Service
	Projects      *project.Service
	Conversations *conversation.Service
}

// New 由三个外部客户端装配出全部服务
func New(cfg *config.Config, st store.Store, objects objectstore.Store, c cache.Cache, log *slog.Logger) *Container {
	policy := cache.NewPolicy(c, log)
	m := media.NewManager(st, objects, cfg.Media)
	conversations := conversation.New(st, policy)
	m.Schedule(media.Job{Name: "expired messages", Run: conversations.DeleteExpired})
	return &Container{
		Config:        cfg,
		Store:         st,
		Objects:       objects,
		Cache:         policy,
		Media:         m,
		Reactions:     reaction.New(st, policy),
		Engagement:    engagement.New(st, m, policy),
		Projects:      project.New(st, m, policy),
		Conversations: conversations,
	}
}
