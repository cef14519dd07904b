package comment

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/engagement"
)

var (
	log      *slog.Logger
	comments *engagement.Service
)

type ModuleComment struct{}

func (m *ModuleComment) GetName() string {
	return "Comment"
}

func (m *ModuleComment) Init(c *container.Container) {
	log = logger.New("Comment")
	comments = c.Engagement
}
