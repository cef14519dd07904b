package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"civic-project-system/config"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/sentry"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Message 仅返回一条提示
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Fail 所有 handler 的错误出口：归一错误类型、上报 5xx 并写响应
func Fail(c *gin.Context, err error) {
	e := From(err)
	_ = c.Error(e)
	c.Set(ErrorContextKey, e)

	if e.Code >= http.StatusInternalServerError {
		logger.WithContext(logger.New("Response"), c).Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", e.Code,
			"error", err.Error(),
		)
		sentry.CaptureException(c, e)
	}

	if e.Code == http.StatusNoContent {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	body := *e
	if config.Get().Mode != config.ModeDebug {
		body.Origin = ""
	}
	c.AbortWithStatusJSON(int(e.Code), &body)
}

// From 把任意错误映射为 *Error
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ErrBadRequest.WithMessage("%s", ve.Error()).WithOrigin(err)
	}
	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		return ErrBadRequest.WithMessage("%s", bindingMessage(bindErrs)).WithOrigin(err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) {
		return ErrBadRequest.WithMessage("Invalid request body").WithOrigin(err)
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound.WithOrigin(err)
	case errors.Is(err, store.ErrDuplicate):
		return ErrConflict.WithOrigin(err)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout.WithOrigin(err)
	}
	return ErrInternal.WithOrigin(err)
}

func bindingMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("Please provide %s", field))
		case "email":
			msgs = append(msgs, "Please provide a valid email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, ", ")
}
