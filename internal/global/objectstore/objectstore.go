// Package objectstore 媒体文件的外部存储。上传返回引用令牌（key），删除按 key 幂等
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrUnsupported = errors.New("operation not supported by this storage")
)

// Blob 已写入存储的文件
type Blob struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	// Name 原始文件名，用于解析拍摄日期
	Name string `json:"name,omitempty"`
}

// Object 清理任务枚举到的对象
type Object struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// PresignedUpload 前端直传所需信息
type PresignedUpload struct {
	UploadURL string            `json:"upload_url"`
	Key       string            `json:"key"`
	URL       string            `json:"url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

type Store interface {
	Upload(ctx context.Context, name, contentType string, size int64, body io.Reader) (Blob, error)
	// Delete 对不存在的 key 返回 nil
	Delete(ctx context.Context, key string) error
	// Stat 不存在时返回 ErrNotFound
	Stat(ctx context.Context, key string) (Object, error)
	// List 列出前缀下的全部对象
	List(ctx context.Context) ([]Object, error)
	Presign(ctx context.Context, name, contentType string, expires time.Duration) (*PresignedUpload, error)
	// URL 由 key 推出公开访问地址
	URL(key string) string
}

// newKey 前缀 + 随机 uuid + 原扩展名
func newKey(prefix, name string) string {
	ext := strings.ToLower(path.Ext(name))
	key := path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
	return strings.TrimLeft(key, "/")
}

// inPrefix key 必须落在前缀之下，拒绝 ../ 之类的路径
func inPrefix(prefix, key string) error {
	clean := path.Clean("/" + key)[1:]
	if clean != key || key == "" {
		return fmt.Errorf("invalid object key %q", key)
	}
	p := strings.Trim(prefix, "/")
	if p != "" && !strings.HasPrefix(key, p+"/") {
		return fmt.Errorf("object key %q outside prefix %q", key, p)
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
