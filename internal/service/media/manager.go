// Package media 媒体生命周期：上传、随事务挂载与替换、失败补偿、提交后清理与孤儿扫描
//
// 对象存储不参与数据库事务。事务内只写行并记录待删除的 key：
// 提交成功后才真正删除旧文件，回滚时删除本次新上传却没有行引用的文件。
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"civic-project-system/config"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"golang.org/x/sync/errgroup"
)

type Manager struct {
	store   store.Store
	objects objectstore.Store
	cfg     config.Media
	log     *slog.Logger
	now     func() time.Time
	jobs    []Job
}

func NewManager(st store.Store, objects objectstore.Store, cfg config.Media) *Manager {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Manager{
		store:   st,
		objects: objects,
		cfg:     cfg,
		log:     logger.New("Media"),
		now:     time.Now,
	}
}

func (m *Manager) Objects() objectstore.Store {
	return m.objects
}

// call 为单次对象存储调用加超时
func (m *Manager) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.TimeoutSec <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutSec)*time.Second)
}

func storeErr(err error) error {
	return response.ErrObjectStore.WithOrigin(err)
}

// Upload 并发上传，任一失败则删除已上传的文件并返回 ObjectStore 错误
func (m *Manager) Upload(ctx context.Context, sources []Source) ([]objectstore.Blob, error) {
	if err := m.Validate(sources); err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}

	blobs := make([]objectstore.Blob, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			blob, err := m.uploadOne(gctx, src)
			if err != nil {
				return fmt.Errorf("upload %q: %w", src.Name, err)
			}
			blobs[i] = blob
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var done []objectstore.Blob
		for _, b := range blobs {
			if b.Key != "" {
				done = append(done, b)
			}
		}
		m.deleteBlobs(context.WithoutCancel(ctx), keysOf(done), "upload rollback")
		return nil, storeErr(err)
	}
	return blobs, nil
}

func (m *Manager) uploadOne(ctx context.Context, src Source) (objectstore.Blob, error) {
	body, err := src.Open()
	if err != nil {
		return objectstore.Blob{}, err
	}
	defer body.Close()

	ctx, cancel := m.call(ctx)
	defer cancel()
	return m.objects.Upload(ctx, src.Name, src.ContentType, src.Size, io.LimitReader(body, m.cfg.MaxFileSize+1))
}

// Resolve 把直传引用转为 Blob，文件必须已存在于对象存储
func (m *Manager) Resolve(ctx context.Context, refs []Ref) ([]objectstore.Blob, error) {
	if len(refs) > m.cfg.MaxFiles {
		return nil, response.ErrBadRequest.WithMessage("You can upload at most %d files", m.cfg.MaxFiles)
	}
	blobs := make([]objectstore.Blob, 0, len(refs))
	for _, ref := range refs {
		if ref.Key == "" {
			return nil, response.ErrBadRequest.WithMessage("Please provide a media key")
		}
		url := m.objects.URL(ref.Key)
		if ref.URL != "" && ref.URL != url {
			return nil, response.ErrBadRequest.WithMessage("Media url does not match key %s", ref.Key)
		}
		cctx, cancel := m.call(ctx)
		obj, err := m.objects.Stat(cctx, ref.Key)
		cancel()
		switch {
		case errors.Is(err, objectstore.ErrNotFound):
			return nil, response.ErrBadRequest.WithMessage("Media %s has not been uploaded", ref.Key)
		case err != nil:
			return nil, storeErr(err)
		}
		name := ref.Name
		if name == "" {
			name = ref.Key
		}
		blobs = append(blobs, objectstore.Blob{
			Key:      ref.Key,
			URL:      url,
			MimeType: obj.ContentType,
			Size:     obj.Size,
			Name:     name,
		})
	}
	err := m.validate(len(blobs), func(i int) (string, string, int64) {
		return blobs[i].Name, blobs[i].MimeType, blobs[i].Size
	})
	if err != nil {
		return nil, err
	}
	return blobs, nil
}

// Prepare 统一处理 multipart 文件与直传引用，两者可同时出现
func (m *Manager) Prepare(ctx context.Context, files Files) ([]objectstore.Blob, error) {
	if files.Len() > m.cfg.MaxFiles {
		return nil, response.ErrBadRequest.WithMessage("You can upload at most %d files", m.cfg.MaxFiles)
	}
	resolved, err := m.Resolve(ctx, files.Refs)
	if err != nil {
		return nil, err
	}
	uploaded, err := m.Upload(ctx, files.Sources)
	if err != nil {
		return nil, err
	}
	return append(resolved, uploaded...), nil
}

// Transaction 在一个数据库事务中执行 fn。
// fn 或提交失败时对 pending 做补偿删除并原样返回错误；成功后清理 op 记录的旧文件
func (m *Manager) Transaction(ctx context.Context, pending []objectstore.Blob, fn func(tx store.Store, op *Op) error) error {
	op := &Op{m: m}
	err := m.store.Transaction(ctx, func(tx store.Store) error {
		op.tx = tx
		return fn(tx, op)
	})
	if err != nil {
		m.Compensate(context.WithoutCancel(ctx), pending)
		return err
	}
	m.Purge(context.WithoutCancel(ctx), op.purge)
	return nil
}

// Compensate 删除回滚后没有行引用的 blob；无法确认时宁可留给扫描任务
func (m *Manager) Compensate(ctx context.Context, blobs []objectstore.Blob) {
	if len(blobs) == 0 {
		return
	}
	keys := keysOf(blobs)
	live, err := m.store.Media().ExistingKeys(ctx, keys)
	if err != nil {
		m.log.Error("compensation skipped: cannot check media references", "keys", keys, "error", err)
		return
	}
	var orphans []string
	for _, k := range keys {
		if !live[k] {
			orphans = append(orphans, k)
		}
	}
	m.deleteBlobs(ctx, orphans, "compensation")
}

// Purge 提交后删除被移除的文件，失败只记录日志
func (m *Manager) Purge(ctx context.Context, keys []string) {
	m.deleteBlobs(ctx, keys, "purge")
}

// deleteBlobs 有界并发删除，返回失败数
func (m *Manager) deleteBlobs(ctx context.Context, keys []string, reason string) int {
	if len(keys) == 0 {
		return 0
	}
	var g errgroup.Group
	g.SetLimit(m.cfg.Concurrency)
	failed := make([]bool, len(keys))
	for i, key := range keys {
		g.Go(func() error {
			cctx, cancel := m.call(ctx)
			defer cancel()
			if err := m.objects.Delete(cctx, key); err != nil {
				failed[i] = true
				m.log.Error("blob delete failed", "reason", reason, "key", key, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	if n < len(keys) {
		m.log.Info("blobs deleted", "reason", reason, "deleted", len(keys)-n, "failed", n)
	}
	return n
}

func keysOf(blobs []objectstore.Blob) []string {
	keys := make([]string, 0, len(blobs))
	for _, b := range blobs {
		keys = append(keys, b.Key)
	}
	return keys
}

func rowKeys(rows []model.Media) []string {
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.Key)
	}
	return keys
}
