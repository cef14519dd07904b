package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"civic-project-system/internal/global/response"
)

// Source 一个待上传的文件
type Source struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func FromMultipart(files []*multipart.FileHeader) []Source {
	sources := make([]Source, 0, len(files))
	for _, fh := range files {
		sources = append(sources, Source{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return sources
}

// Ref 已在对象存储中的文件，来自预签名直传或已有媒体
type Ref struct {
	Key  string `json:"key" binding:"required"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Files 一次请求携带的文件
type Files struct {
	Sources []Source
	Refs    []Ref
}

func (f Files) Len() int {
	return len(f.Sources) + len(f.Refs)
}

func allowedType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// validate 数量、类型与大小限制
func (m *Manager) validate(n int, check func(i int) (name, contentType string, size int64)) error {
	if n > m.cfg.MaxFiles {
		return response.ErrBadRequest.WithMessage("You can upload at most %d files", m.cfg.MaxFiles)
	}
	for i := range n {
		name, contentType, size := check(i)
		if !allowedType(contentType) {
			return response.ErrBadRequest.WithMessage("Invalid file type: %s", name)
		}
		if size > m.cfg.MaxFileSize {
			return response.ErrBadRequest.WithMessage("File size must be less than %s", humanSize(m.cfg.MaxFileSize))
		}
	}
	return nil
}

func (m *Manager) Validate(sources []Source) error {
	return m.validate(len(sources), func(i int) (string, string, int64) {
		return sources[i].Name, sources[i].ContentType, sources[i].Size
	})
}

func humanSize(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

// RecordedDate 文件名形如 PREFIX_YYYYMMDD_xxx（相机的默认命名），取第二段作为拍摄日期
func RecordedDate(name string) *time.Time {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return nil
	}
	t, err := time.ParseInLocation("20060102", parts[1], time.Local)
	if err != nil {
		return nil
	}
	return &t
}
