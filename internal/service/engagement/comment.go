package engagement

import (
	"context"
	"errors"
	"strings"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
)

// ProjectComments 某个项目的评论，附带项目标题
type ProjectComments struct {
	Listing[model.Comment]
	ProjectID uint   `json:"project_id"`
	Project   string `json:"project"`
}

func (s *Service) PostComment(ctx context.Context, actor permission.Actor, projectID uint, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if err := response.BadRequestIf(content == "", "Please provide content"); err != nil {
		return nil, err
	}
	c := &model.Comment{Content: content, ProjectID: projectID, CommentedBy: actor.ID}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := project(ctx, tx, projectID); err != nil {
			return err
		}
		return tx.Comments().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateComments(ctx, projectID)
	return c, nil
}

// ListComments 不分页时走 comments:{id} 缓存
func (s *Service) ListComments(ctx context.Context, projectID uint, page store.Page) (*ProjectComments, error) {
	load := func(ctx context.Context) (*ProjectComments, error) {
		p, err := project(ctx, s.store, projectID)
		if err != nil {
			return nil, err
		}
		rows, total, err := s.store.Comments().List(ctx, store.CommentQuery{ProjectID: projectID, Page: page})
		if err != nil {
			return nil, err
		}
		if err := s.fillCommentStats(ctx, rows); err != nil {
			return nil, err
		}
		return &ProjectComments{Listing: *listing(rows, total), ProjectID: p.ID, Project: p.Title}, nil
	}
	if page.Enabled() {
		return load(ctx)
	}
	return cache.ReadThrough(ctx, s.cache, cache.CommentsKey(projectID), load)
}

func (s *Service) fillCommentStats(ctx context.Context, rows []model.Comment) error {
	ids := make([]uint, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	stats, err := s.store.Comments().Stats(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		st := stats[rows[i].ID]
		rows[i].Stats = &st
	}
	return nil
}

// comment 评论必须属于该项目
func comment(ctx context.Context, tx store.Store, projectID, id uint) (*model.Comment, error) {
	if _, err := project(ctx, tx, projectID); err != nil {
		return nil, err
	}
	c, err := tx.Comments().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && c.ProjectID != projectID) {
		return nil, response.NotFoundf("Comment")
	}
	return c, err
}

func (s *Service) EditComment(ctx context.Context, actor permission.Actor, projectID, id uint, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if err := response.BadRequestIf(content == "", "Content is required"); err != nil {
		return nil, err
	}
	var c *model.Comment
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if c, err = comment(ctx, tx, projectID, id); err != nil {
			return err
		}
		if err := permission.Check(actor, c.CommentedBy); err != nil {
			return err
		}
		if err := response.ConflictIf(c.Content == content, "Content is the same as the previous"); err != nil {
			return err
		}
		c.Content = content
		return tx.Comments().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateComments(ctx, projectID)
	return c, nil
}

// DeleteComment 评论的举报随外键级联删除，举报的媒体文件在提交后清理
func (s *Service) DeleteComment(ctx context.Context, actor permission.Actor, projectID, id uint) error {
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		c, err := comment(ctx, tx, projectID, id)
		if err != nil {
			return err
		}
		if err := permission.Check(actor, c.CommentedBy); err != nil {
			return err
		}
		rows, err := tx.Media().ListCommentTree(ctx, id)
		if err != nil {
			return err
		}
		if err := op.Detach(ctx, rows); err != nil {
			return err
		}
		return tx.Comments().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateComments(ctx, projectID, cache.KeyReactions)
	return nil
}

func (s *Service) ListAllComments(ctx context.Context, page store.Page) (*Listing[model.Comment], error) {
	rows, total, err := s.store.Comments().List(ctx, store.CommentQuery{Page: page})
	if err != nil {
		return nil, err
	}
	if err := s.fillCommentStats(ctx, rows); err != nil {
		return nil, err
	}
	return listing(rows, total), nil
}

func (s *Service) DeleteAllComments(ctx context.Context) (int64, error) {
	var n int64
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		rows, err := tx.Media().ListCommentTree(ctx, 0)
		if err != nil {
			return err
		}
		if err := op.Detach(ctx, rows); err != nil {
			return err
		}
		if n, err = tx.Comments().DeleteAll(ctx); err != nil {
			return err
		}
		return response.NoContentIf(n == 0, "No comments found")
	})
	if err != nil {
		return 0, err
	}
	// comments:{id} 无法按前缀删除，依赖 60 秒 TTL
	s.cache.Invalidate(ctx, cache.KeyProjects, cache.KeySingleProject, cache.KeyReactions)
	return n, nil
}

// invalidateComments 项目列表的统计包含评论数
func (s *Service) invalidateComments(ctx context.Context, projectID uint, extra ...string) {
	keys := append([]string{cache.CommentsKey(projectID), cache.KeyProjects, cache.KeySingleProject}, extra...)
	s.cache.Invalidate(ctx, keys...)
}
