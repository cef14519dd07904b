package report

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/engagement"
)

var (
	log     *slog.Logger
	reports *engagement.Service
)

type ModuleReport struct{}

func (m *ModuleReport) GetName() string {
	return "Report"
}

func (m *ModuleReport) Init(c *container.Container) {
	log = logger.New("Report")
	reports = c.Engagement
}
