package objectstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// Local 保存到本地目录，开发与测试使用
type Local struct {
	Dir     string
	BaseURL string
	Prefix  string
}

func NewLocal(dir, baseURL, prefix string) *Local {
	return &Local{Dir: dir, BaseURL: baseURL, Prefix: prefix}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.Dir, filepath.FromSlash(key))
}

func (l *Local) Upload(ctx context.Context, name, contentType string, size int64, body io.Reader) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	key := newKey(l.Prefix, name)
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return Blob{}, err
	}
	dst, err := os.Create(p)
	if err != nil {
		return Blob{}, err
	}
	n, err := io.Copy(dst, body)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return Blob{}, err
	}
	return Blob{Key: key, URL: l.URL(key), MimeType: contentType, Size: n, Name: name}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := inPrefix(l.Prefix, key); err != nil {
		return err
	}
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) Stat(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if err := inPrefix(l.Prefix, key); err != nil {
		return Object{}, ErrNotFound
	}
	info, err := os.Stat(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, Size: info.Size(), ContentType: contentType(key), LastModified: info.ModTime()}, nil
}

func (l *Local) List(ctx context.Context) ([]Object, error) {
	root := l.path(l.Prefix)
	var objects []Object
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.Dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		objects = append(objects, Object{
			Key:          key,
			Size:         info.Size(),
			ContentType:  contentType(key),
			LastModified: info.ModTime(),
		})
		return nil
	})
	return objects, err
}

// contentType 本地文件不保存元数据，按扩展名推断
func contentType(key string) string {
	return mime.TypeByExtension(filepath.Ext(key))
}

// Presign 本地存储不支持直传
func (l *Local) Presign(context.Context, string, string, time.Duration) (*PresignedUpload, error) {
	return nil, ErrUnsupported
}

func (l *Local) URL(key string) string {
	return joinURL(l.BaseURL, key)
}
