package reaction

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleReaction) InitRouter(r *gin.RouterGroup) {
	for _, kind := range []model.TargetKind{model.TargetProject, model.TargetComment} {
		g := r.Group("/"+string(kind)+"s/:id/reactions", middleware.Auth())
		g.POST("", React(kind))
		g.GET("", ListTarget(kind))
		g.PATCH("/:reactionId", Edit(kind))
		g.DELETE("/:reactionId", Delete(kind))
	}

	admin := r.Group("/reactions", middleware.Auth(), middleware.RequireRole(model.RoleAdmin))
	admin.GET("", List)
	admin.DELETE("", DeleteAll)
}
