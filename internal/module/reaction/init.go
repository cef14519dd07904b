package reaction

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/reaction"
)

var (
	log       *slog.Logger
	reactions *reaction.Engine
)

type ModuleReaction struct{}

func (m *ModuleReaction) GetName() string {
	return "Reaction"
}

func (m *ModuleReaction) Init(c *container.Container) {
	log = logger.New("Reaction")
	reactions = c.Reactions
}
