// Package test 路由级测试的请求与断言工具
package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

// File multipart 中的一个文件
type File struct {
	Field       string
	Name        string
	ContentType string
	Body        []byte
}

// Request token 为空时不带 Authorization
type Request struct {
	Method  string
	Path    string
	Token   string
	Body    any
	Form    map[string][]string
	Files   []File
	Headers map[string]string
}

func (r Request) build(t *testing.T) *http.Request {
	t.Helper()
	var body io.Reader
	contentType := ""
	switch {
	case r.Form != nil || r.Files != nil:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for k, vs := range r.Form {
			for _, v := range vs {
				require.NoError(t, w.WriteField(k, v))
			}
		}
		for _, f := range r.Files {
			h := textproto.MIMEHeader{}
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.Name))
			h.Set("Content-Type", f.ContentType)
			part, err := w.CreatePart(h)
			require.NoError(t, err)
			_, err = part.Write(f.Body)
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
		body, contentType = buf, w.FormDataContentType()
	case r.Body != nil:
		b, err := json.Marshal(r.Body)
		require.NoError(t, err)
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req := httptest.NewRequest(r.Method, r.Path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req
}

// DoRequest 发出请求并返回记录器
func DoRequest(t *testing.T, h http.Handler, r Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r.build(t))
	return w
}

// Decode 把响应体解码为 T
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
