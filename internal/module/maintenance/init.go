package maintenance

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/media"
)

var (
	log     *slog.Logger
	manager *media.Manager
)

type ModuleMaintenance struct{}

func (m *ModuleMaintenance) GetName() string {
	return "Maintenance"
}

func (m *ModuleMaintenance) Init(c *container.Container) {
	log = logger.New("Maintenance")
	manager = c.Media
}
