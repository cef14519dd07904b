package ping

import (
	"civic-project-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "version": version})
	})
	r.GET("/health", Health)
}

// Health 读一次标签表确认关系存储可用
func Health(c *gin.Context) {
	if _, err := st.Tags().List(c.Request.Context()); err != nil {
		log.Error("health check failed", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, gin.H{
		"message":  "ok",
		"version":  version,
		"database": cfg.Storage.Database,
		"storage":  cfg.Storage.Driver,
		"cache":    cfg.Cache.Driver,
	})
}
