// Package engagement 评论、举报与进度记录的写流程。
// 每个写请求一个事务，媒体随事务挂载，失败时补偿删除已上传的文件
package engagement

import (
	"context"
	"errors"
	"log/slog"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/store"
)

type Service struct {
	store store.Store
	media *media.Manager
	cache *cache.Policy
	log   *slog.Logger
}

func New(st store.Store, m *media.Manager, c *cache.Policy) *Service {
	return &Service{store: st, media: m, cache: c, log: logger.New("Engagement")}
}

func project(ctx context.Context, st store.Store, id uint) (*model.Project, error) {
	p, err := st.Projects().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NotFoundf("Project")
	}
	return p, err
}

// Listing 分页列表的通用响应
type Listing[T any] struct {
	Total int64 `json:"total_count"`
	Count int   `json:"count"`
	Items []T   `json:"items"`
}

func listing[T any](rows []T, total int64) *Listing[T] {
	if rows == nil {
		rows = []T{}
	}
	return &Listing[T]{Total: total, Count: len(rows), Items: rows}
}

// invalidateProject 进度写回了项目的状态与进度
func (s *Service) invalidateProject(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.KeyProjects, cache.KeySingleProject, cache.KeyUpdates)
}
