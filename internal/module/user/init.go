package user

import (
	"log/slog"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/store"
)

var (
	log    *slog.Logger
	users  store.Store
	policy *cache.Policy
)

type ModuleUser struct{}

func (u *ModuleUser) GetName() string {
	return "User"
}

func (u *ModuleUser) Init(c *container.Container) {
	log = logger.New("User")
	users = c.Store
	policy = c.Cache
}
