package jwt

import (
	"github.com/gin-gonic/gin"
)

const PayloadKey = "payload"

func GetUserPayload(c *gin.Context) (userPayload *Claims, exist bool) {
	payload, _ := c.Get(PayloadKey)
	userPayload, exist = payload.(*Claims)
	return
}

// SetUserPayload 供中间件与测试注入当前用户
func SetUserPayload(c *gin.Context, claims *Claims) {
	c.Set(PayloadKey, claims)
}
