package reference

import (
	"log/slog"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/store"
)

var (
	log    *slog.Logger
	db     store.Store
	policy *cache.Policy
)

// ModuleReference 村、资金来源、标签、公告与联系方式
type ModuleReference struct{}

func (m *ModuleReference) GetName() string {
	return "Reference"
}

func (m *ModuleReference) Init(c *container.Container) {
	log = logger.New("Reference")
	db = c.Store
	policy = c.Cache
}
