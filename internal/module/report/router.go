package report

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleReport) InitRouter(r *gin.RouterGroup) {
	r.POST("/projects/:id/reports", middleware.Auth(), Create(model.TargetProject))
	r.POST("/comments/:id/reports", middleware.Auth(), Create(model.TargetComment))

	g := r.Group("/reports", middleware.Auth())
	admin := middleware.RequireRole(model.RoleAdmin)
	g.GET("", admin, List)
	g.GET("/export", admin, Export)
	g.DELETE("", admin, DeleteAll)
	g.GET("/:id", admin, Get)
	g.PATCH("/:id", admin, Update)
	g.DELETE("/:id", Delete)
}
