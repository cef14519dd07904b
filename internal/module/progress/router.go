package progress

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleProgress) InitRouter(r *gin.RouterGroup) {
	editor := middleware.RequireRole(model.RoleAdmin, model.RoleBarangay)

	g := r.Group("/projects/:id/progressHistory", middleware.Auth())
	g.GET("", List)
	g.POST("", editor, Create)
	g.DELETE("", editor, DeleteAll)
	g.GET("/:historyId", Get)
	g.PATCH("/:historyId", editor, Edit)
	g.DELETE("/:historyId", editor, Delete)
}
