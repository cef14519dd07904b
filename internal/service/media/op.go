package media

import (
	"context"
	"errors"

	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

// Op 事务内的媒体操作，只在 Manager.Transaction 的回调中有效
type Op struct {
	m     *Manager
	tx    store.Store
	purge []string
}

// Attach 插入媒体行，空集合不做任何事
func (op *Op) Attach(ctx context.Context, owner model.Owner, blobs []objectstore.Blob) ([]model.Media, error) {
	if len(blobs) == 0 {
		return nil, nil
	}
	rows := make([]model.Media, 0, len(blobs))
	for _, b := range blobs {
		row := model.Media{
			URL:        b.URL,
			Key:        b.Key,
			MimeType:   b.MimeType,
			Size:       b.Size,
			RecordedAt: RecordedDate(b.Name),
		}
		row.SetOwner(owner)
		rows = append(rows, row)
	}
	if err := op.tx.Media().Create(ctx, rows); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, response.ErrConflict.WithMessage("Media is already attached").WithOrigin(err)
		}
		return nil, err
	}
	return rows, nil
}

// Replace 以 key 为准对比：新 key 挂载，不再出现的旧行移除，相同 key 保持不动
func (op *Op) Replace(ctx context.Context, owner model.Owner, blobs []objectstore.Blob) (added, removed []model.Media, err error) {
	existing, err := op.tx.Media().ListByOwner(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	want := make(map[string]bool, len(blobs))
	for _, b := range blobs {
		want[b.Key] = true
	}
	have := make(map[string]bool, len(existing))
	for _, row := range existing {
		have[row.Key] = true
		if !want[row.Key] {
			removed = append(removed, row)
		}
	}
	var fresh []objectstore.Blob
	for _, b := range blobs {
		if !have[b.Key] {
			fresh = append(fresh, b)
			have[b.Key] = true
		}
	}
	if err := op.Detach(ctx, removed); err != nil {
		return nil, nil, err
	}
	if added, err = op.Attach(ctx, owner, fresh); err != nil {
		return nil, nil, err
	}
	return added, removed, nil
}

// Detach 删除行并记录 key，提交后再删文件
func (op *Op) Detach(ctx context.Context, rows []model.Media) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	if _, err := op.tx.Media().DeleteIDs(ctx, ids); err != nil {
		return err
	}
	op.purge = append(op.purge, rowKeys(rows)...)
	return nil
}

func (op *Op) DetachOwner(ctx context.Context, owner model.Owner) ([]model.Media, error) {
	rows, err := op.tx.Media().ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return rows, op.Detach(ctx, rows)
}
