package module

import (
	"civic-project-system/internal/global/container"
	"civic-project-system/internal/module/comment"
	"civic-project-system/internal/module/conversation"
	"civic-project-system/internal/module/maintenance"
	"civic-project-system/internal/module/ping"
	"civic-project-system/internal/module/progress"
	"civic-project-system/internal/module/project"
	"civic-project-system/internal/module/reaction"
	"civic-project-system/internal/module/reference"
	"civic-project-system/internal/module/report"
	"civic-project-system/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init(c *container.Container)
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&ping.ModulePing{},
		&user.ModuleUser{},
		&project.ModuleProject{},
		&reaction.ModuleReaction{},
		&comment.ModuleComment{},
		&conversation.ModuleConversation{},
		&report.ModuleReport{},
		&progress.ModuleProgress{},
		&reference.ModuleReference{},
		&maintenance.ModuleMaintenance{},
	})
}
