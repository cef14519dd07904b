package progress

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/engagement"
)

var (
	log     *slog.Logger
	history *engagement.Service
)

type ModuleProgress struct{}

func (m *ModuleProgress) GetName() string {
	return "Progress"
}

func (m *ModuleProgress) Init(c *container.Container) {
	log = logger.New("Progress")
	history = c.Engagement
}
