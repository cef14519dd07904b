package ping

import (
	"log/slog"

	"civic-project-system/config"
	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/store"
)

var (
	log *slog.Logger
	st  store.Store
	cfg *config.Config
)

type ModulePing struct{}

func (p *ModulePing) GetName() string {
	return "Ping"
}

func (p *ModulePing) Init(c *container.Container) {
	log = logger.New("Ping")
	st = c.Store
	cfg = c.Config
}
