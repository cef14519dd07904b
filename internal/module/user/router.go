package user

import (
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)
	auth.GET("/me", middleware.Auth(), Me)

	g := r.Group("/users", middleware.Auth())
	admin := middleware.RequireRole(model.RoleAdmin)
	g.GET("", admin, List)
	g.POST("", admin, Add)
	g.DELETE("", admin, DeleteAll)
	g.PATCH("/update-user", UpdateProfile)
	g.GET("/:id", Get)
	g.PATCH("/:id", Edit)
	g.DELETE("/:id", Delete)
}
