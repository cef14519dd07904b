package middleware

import (
	"slices"
	"strings"

	"civic-project-system/internal/global/jwt"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"

	"github.com/gin-gonic/gin"
)

// Auth 校验 Bearer token 并写入 payload
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, response.ErrUnauthenticated)
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		payload, valid := jwt.ParseToken(token)
		if !valid {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		jwt.SetUserPayload(c, payload)
		c.Next()
	}
}

// RequireRole 必须在 Auth 之后
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := jwt.GetUserPayload(c)
		if !ok {
			response.Fail(c, response.ErrUnauthenticated)
			return
		}
		if !slices.Contains(roles, payload.Role) {
			response.Fail(c, response.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
