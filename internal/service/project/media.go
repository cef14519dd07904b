package project

import (
	"context"
	"errors"

	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
)

// MediaListing 项目媒体列表
type MediaListing struct {
	Total int64         `json:"total_count"`
	Count int           `json:"count"`
	Media []model.Media `json:"media"`
}

func (s *Service) ListMedia(ctx context.Context, id uint, t model.MediaType, page store.Page) (*MediaListing, error) {
	if err := response.BadRequestIf(t != "" && !t.Valid(), "Invalid media type"); err != nil {
		return nil, err
	}
	if _, err := find(ctx, s.store, id); err != nil {
		return nil, err
	}
	rows, total, err := s.store.Media().List(ctx, store.MediaQuery{Owner: model.ProjectOwner(id), Type: t, Page: page})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.Media{}
	}
	return &MediaListing{Total: total, Count: len(rows), Media: rows}, nil
}

// owned 项目存在且 actor 有权修改
func owned(ctx context.Context, tx store.Store, actor permission.Actor, id uint) error {
	p, err := find(ctx, tx, id)
	if err != nil {
		return err
	}
	return permission.Check(actor, p.CreatedBy)
}

func (s *Service) precheck(ctx context.Context, actor permission.Actor, id uint, files media.Files) error {
	if err := response.BadRequestIf(files.Len() == 0, "Please upload at least one file"); err != nil {
		return err
	}
	return owned(ctx, s.store, actor, id)
}

// AppendMedia 追加媒体
func (s *Service) AppendMedia(ctx context.Context, actor permission.Actor, id uint, files media.Files) ([]model.Media, error) {
	if err := s.precheck(ctx, actor, id, files); err != nil {
		return nil, err
	}
	blobs, err := s.media.Prepare(ctx, files)
	if err != nil {
		return nil, err
	}
	var rows []model.Media
	err = s.media.Transaction(ctx, blobs, func(tx store.Store, op *media.Op) error {
		if err := owned(ctx, tx, actor, id); err != nil {
			return err
		}
		rows, err = op.Attach(ctx, model.ProjectOwner(id), blobs)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, false)
	return rows, nil
}

// ReplaceMedia 以提交的集合为准：已有的 key 保留，新 key 挂载，其余移除
func (s *Service) ReplaceMedia(ctx context.Context, actor permission.Actor, id uint, files media.Files) (added, removed []model.Media, err error) {
	if err := owned(ctx, s.store, actor, id); err != nil {
		return nil, nil, err
	}
	blobs, err := s.media.Prepare(ctx, files)
	if err != nil {
		return nil, nil, err
	}
	err = s.media.Transaction(ctx, blobs, func(tx store.Store, op *media.Op) error {
		if err := owned(ctx, tx, actor, id); err != nil {
			return err
		}
		added, removed, err = op.Replace(ctx, model.ProjectOwner(id), blobs)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.invalidate(ctx, false)
	return added, removed, nil
}

// DeleteAllMedia 没有媒体时返回 NoContent
func (s *Service) DeleteAllMedia(ctx context.Context, actor permission.Actor, id uint) (int, error) {
	var n int
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		if err := owned(ctx, tx, actor, id); err != nil {
			return err
		}
		rows, err := op.DetachOwner(ctx, model.ProjectOwner(id))
		if err != nil {
			return err
		}
		n = len(rows)
		return response.NoContentIf(n == 0, "No media found")
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, false)
	return n, nil
}

// DeleteMedia mediaURL 非空时必须与记录一致
func (s *Service) DeleteMedia(ctx context.Context, actor permission.Actor, projectID, mediaID uint, mediaURL string) error {
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		if err := owned(ctx, tx, actor, projectID); err != nil {
			return err
		}
		row, err := tx.Media().Get(ctx, mediaID)
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFoundf("Media")
		}
		if err != nil {
			return err
		}
		if o, ok := row.Owner(); !ok || o != model.ProjectOwner(projectID) {
			return response.NotFoundf("Media")
		}
		if err := response.BadRequestIf(mediaURL != "" && mediaURL != row.URL, "Media url does not match"); err != nil {
			return err
		}
		return op.Detach(ctx, []model.Media{*row})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, false)
	return nil
}
