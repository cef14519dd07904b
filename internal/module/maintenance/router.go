package maintenance

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleMaintenance) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/maintenance", middleware.Auth(), middleware.RequireRole(model.RoleAdmin))
	g.POST("/sweep", Sweep)
}

// Sweep 立即执行一次孤儿文件扫描
func Sweep(c *gin.Context) {
	log.Info("manual media sweep", "user_id", request.Actor(c).ID)
	report, err := manager.Sweep(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, report)
}
