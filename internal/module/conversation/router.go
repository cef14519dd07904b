package conversation

import (
	"civic-project-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (m *ModuleConversation) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/conversations", middleware.Auth())
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id/messages", Messages)
	g.POST("/:id/messages", Send)
}
