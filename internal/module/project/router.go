package project

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (p *ModuleProject) InitRouter(r *gin.RouterGroup) {
	editor := middleware.RequireRole(model.RoleAdmin, model.RoleBarangay)

	g := r.Group("/projects", middleware.Auth())
	g.GET("", List)
	g.POST("", editor, Create)
	g.DELETE("", middleware.RequireRole(model.RoleAdmin), DeleteAll)
	g.GET("/:id", Get)
	g.PATCH("/:id", editor, Update)
	g.DELETE("/:id", editor, Delete)

	g.GET("/:id/media", ListMedia)
	g.POST("/:id/media", editor, AppendMedia)
	g.PUT("/:id/media", editor, ReplaceMedia)
	g.PATCH("/:id/media", editor, ReplaceMedia)
	g.DELETE("/:id/media", editor, DeleteAllMedia)
	g.DELETE("/:id/media/:mediaId", editor, DeleteMedia)

	r.POST("/media/presign", middleware.Auth(), Presign)
}
