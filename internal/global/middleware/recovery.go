package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

// Recovery panic 按 500 返回 {message}，并经 response.Fail 上报
func Recovery() gin.HandlerFunc {
	log := logger.New("Recovery")
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			log.Error("panic recovered",
				slog.String("route", c.FullPath()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			response.Fail(c, response.ErrInternal.WithOrigin(err))
		}()
		c.Next()
	}
}
