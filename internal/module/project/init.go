package project

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/project"
)

var (
	log      *slog.Logger
	projects *project.Service
	manager  *media.Manager
)

type ModuleProject struct{}

func (p *ModuleProject) GetName() string {
	return "Project"
}

func (p *ModuleProject) Init(c *container.Container) {
	log = logger.New("Project")
	projects = c.Projects
	manager = c.Media
}
