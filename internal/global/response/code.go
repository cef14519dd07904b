package response

import "net/http"

var (
	ErrBadRequest      = newError(http.StatusBadRequest, "Bad request")
	ErrUnauthenticated = newError(http.StatusUnauthorized, "Not authenticated")
	ErrTokenInvalid    = newError(http.StatusUnauthorized, "Invalid or expired token")
	ErrUnauthorized    = newError(http.StatusForbidden, "not authorized to access this route")
	ErrNotFound        = newError(http.StatusNotFound, "Resource not found")
	ErrConflict        = newError(http.StatusConflict, "Resource already exists")
	// ErrNoContent 没有可删除的数据，204 不带响应体
	ErrNoContent   = newError(http.StatusNoContent, "nothing to delete")
	ErrDatabase    = newError(http.StatusInternalServerError, "Database error")
	ErrInternal    = newError(http.StatusInternalServerError, "Internal server error")
	ErrObjectStore = newError(http.StatusServiceUnavailable, "Object storage unavailable, please retry")
	ErrTimeout     = newError(http.StatusGatewayTimeout, "Request timed out")
)
