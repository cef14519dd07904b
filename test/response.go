package test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"civic-project-system/internal/global/response"

	"github.com/stretchr/testify/require"
)

type messageBody struct {
	Message string `json:"message"`
}

// ErrorEqual 状态码与消息都一致；message 为空时只比较状态码
func ErrorEqual(t *testing.T, expected *response.Error, message string, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, expected.Status(), w.Code, w.Body.String())
	if expected.Status() == http.StatusNoContent {
		require.Zero(t, w.Body.Len())
		return
	}
	if message != "" {
		require.Equal(t, message, Decode[messageBody](t, w).Message)
	}
}

// Status 只断言状态码，失败时打印响应体
func Status(t *testing.T, code int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}
