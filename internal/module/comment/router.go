package comment

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleComment) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/projects/:id/comments", middleware.Auth())
	g.POST("", Post)
	g.GET("", List)
	g.PATCH("/:commentId", Edit)
	g.DELETE("/:commentId", Delete)

	admin := r.Group("/comments", middleware.Auth(), middleware.RequireRole(model.RoleAdmin))
	admin.GET("", ListAll)
	admin.DELETE("", DeleteAll)
}
