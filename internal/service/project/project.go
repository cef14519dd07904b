// Package project 项目的增删改查、项目媒体与统计
package project

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
	"civic-project-system/tools"
)

type Service struct {
	store store.Store
	media *media.Manager
	cache *cache.Policy
}

func New(st store.Store, m *media.Manager, c *cache.Policy) *Service {
	return &Service{store: st, media: m, cache: c}
}

// Input 创建与修改共用，指针为 nil 的字段不修改；Tags/Barangays 为 nil 时不修改，空切片表示清空
type Input struct {
	Title         *string              `form:"title" json:"title"`
	Description   *string              `form:"description" json:"description"`
	Cost          *float64             `form:"cost" json:"cost"`
	StartDate     *string              `form:"start_date" json:"start_date"`
	DueDate       *string              `form:"due_date" json:"due_date"`
	Completion    *string              `form:"completion_date" json:"completion_date"`
	Status        *model.ProjectStatus `form:"status" json:"status"`
	Progress      *int                 `form:"progress" json:"progress"`
	FundingSource *string              `form:"funding_source" json:"funding_source"`
	Agency        *string              `form:"implementing_agency" json:"implementing_agency"`
	ContractTerm  *string              `form:"contract_term" json:"contract_term"`
	Contractor    *string              `form:"contractor" json:"contractor"`
	Tags          []string             `form:"tags" json:"tags"`
	Barangays     []uint               `form:"barangays" json:"barangays"`
}

// Listing 列表接口的响应
type Listing struct {
	Total    int64           `json:"total_count"`
	Count    int             `json:"count"`
	Projects []model.Project `json:"projects"`
}

const duplicateTitle = "Project title already exists"

func find(ctx context.Context, st store.Store, id uint) (*model.Project, error) {
	p, err := st.Projects().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NotFoundf("Project")
	}
	return p, err
}

func parseDate(field string, s *string) (*time.Time, error) {
	if strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, ok := tools.ParseDate(*s)
	if !ok {
		return nil, response.ErrBadRequest.WithMessage("Invalid %s format", field)
	}
	return &t, nil
}

func setTrimmed(dst, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// apply 只处理标量字段，关联在事务内解析
func (in *Input) apply(p *model.Project) error {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Cost != nil {
		p.Cost = *in.Cost
	}
	var err error
	if in.StartDate != nil {
		if p.StartDate, err = parseDate("start_date", in.StartDate); err != nil {
			return err
		}
	}
	if in.DueDate != nil {
		if p.DueDate, err = parseDate("due_date", in.DueDate); err != nil {
			return err
		}
	}
	if in.Status != nil {
		if err := response.BadRequestIf(!in.Status.Valid(), "Invalid status"); err != nil {
			return err
		}
		p.Status = *in.Status
	}
	if in.Progress != nil {
		p.Progress = *in.Progress
	}
	if in.Completion != nil {
		if p.CompletionDate, err = parseDate("completion_date", in.Completion); err != nil {
			return err
		}
	}
	// 完成但没有给出日期时记为当天
	if (p.Progress == 100 || p.Status == model.StatusCompleted) && p.CompletionDate == nil {
		today := tools.Today()
		p.CompletionDate = &today
	}
	setTrimmed(&p.ImplementingAgency, in.Agency)
	setTrimmed(&p.ContractTerm, in.ContractTerm)
	setTrimmed(&p.Contractor, in.Contractor)
	for _, name := range in.Tags {
		if err := response.BadRequestIf(!model.IsTagName(name), "Invalid tag: %s", name); err != nil {
			return err
		}
	}
	return nil
}

// associate 资金来源按名称查找或创建，标签按名称，所属村按 id
func (in *Input) associate(ctx context.Context, tx store.Store, p *model.Project) error {
	if in.FundingSource != nil {
		p.FundingSourceID, p.FundingSource = nil, nil
		if name := strings.TrimSpace(*in.FundingSource); name != "" {
			fs, err := tx.FundingSources().FindOrCreate(ctx, name)
			if err != nil {
				return err
			}
			p.FundingSourceID, p.FundingSource = &fs.ID, fs
		}
	}
	if in.Tags != nil {
		names := slices.Compact(slices.Sorted(slices.Values(in.Tags)))
		tags, err := tx.Tags().FindByNames(ctx, names)
		if err != nil {
			return err
		}
		if err := response.NotFoundIf(len(tags) != len(names), "Tag not found"); err != nil {
			return err
		}
		p.Tags = tags
	}
	if in.Barangays != nil {
		barangays := make([]model.Barangay, 0, len(in.Barangays))
		for _, id := range in.Barangays {
			b, err := tx.Barangays().Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return response.NotFoundf("Barangay")
			}
			if err != nil {
				return err
			}
			barangays = append(barangays, *b)
		}
		p.Barangays = barangays
	}
	return nil
}

func titleConflict(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return response.ErrConflict.WithMessage(duplicateTitle).WithOrigin(err)
	}
	return err
}

func (s *Service) Create(ctx context.Context, actor permission.Actor, in Input, files media.Files) (*model.Project, error) {
	p := &model.Project{CreatedBy: actor.ID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := response.BadRequestIf(p.Title == "", "Please provide a title"); err != nil {
		return nil, err
	}
	blobs, err := s.media.Prepare(ctx, files)
	if err != nil {
		return nil, err
	}

	err = s.media.Transaction(ctx, blobs, func(tx store.Store, op *media.Op) error {
		if err := in.associate(ctx, tx, p); err != nil {
			return err
		}
		if err := titleConflict(tx.Projects().Create(ctx, p)); err != nil {
			return err
		}
		if _, err := op.Attach(ctx, model.ProjectOwner(p.ID), blobs); err != nil {
			return err
		}
		p, err = find(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.FundingSource != nil)
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor permission.Actor, id uint, in Input) (*model.Project, error) {
	var p *model.Project
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if p, err = find(ctx, tx, id); err != nil {
			return err
		}
		if err := permission.Check(actor, p.CreatedBy); err != nil {
			return err
		}
		if err := in.apply(p); err != nil {
			return err
		}
		if err := in.associate(ctx, tx, p); err != nil {
			return err
		}
		if err := titleConflict(tx.Projects().Save(ctx, p)); err != nil {
			return err
		}
		p, err = find(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.FundingSource != nil)
	return p, nil
}

// Delete 项目树中的全部媒体（项目、进度、项目与评论的举报）在提交后清理
func (s *Service) Delete(ctx context.Context, actor permission.Actor, id uint) error {
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		p, err := find(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := permission.Check(actor, p.CreatedBy); err != nil {
			return err
		}
		rows, err := tx.Media().ListProjectTree(ctx, id)
		if err != nil {
			return err
		}
		if err := op.Detach(ctx, rows); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, false, cache.CommentsKey(id), cache.KeyReactions)
	return nil
}

// DeleteAll 所有媒体都挂在某个项目树下
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		rows, err := tx.Media().ListAll(ctx)
		if err != nil {
			return err
		}
		if err := op.Detach(ctx, rows); err != nil {
			return err
		}
		if n, err = tx.Projects().DeleteAll(ctx); err != nil {
			return err
		}
		return response.NoContentIf(n == 0, "No projects found")
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, false, cache.KeyReactions)
	return n, nil
}

// List 无过滤无分页时走 projects 缓存
func (s *Service) List(ctx context.Context, q store.ProjectQuery) (*Listing, error) {
	load := func(ctx context.Context) (*Listing, error) {
		rows, total, err := s.store.Projects().List(ctx, q)
		if err != nil {
			return nil, err
		}
		if err := s.fillStats(ctx, rows); err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []model.Project{}
		}
		return &Listing{Total: total, Count: len(rows), Projects: rows}, nil
	}
	if q.Search != "" || q.Status != "" || q.BarangayID != 0 || q.Page.Enabled() {
		return load(ctx)
	}
	return cache.ReadThrough(ctx, s.cache, cache.KeyProjects, load)
}

// Get single_project 只缓存最近一次读取的项目
func (s *Service) Get(ctx context.Context, id uint) (*model.Project, error) {
	return cache.ReadSingle[model.Project](ctx, s.cache, cache.KeySingleProject, id, func(ctx context.Context) (*model.Project, error) {
		p, err := find(ctx, s.store, id)
		if err != nil {
			return nil, err
		}
		rows := []model.Project{*p}
		if err := s.fillStats(ctx, rows); err != nil {
			return nil, err
		}
		return &rows[0], nil
	})
}

func (s *Service) fillStats(ctx context.Context, rows []model.Project) error {
	ids := make([]uint, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	stats, err := s.store.Projects().Stats(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		st := stats[rows[i].ID]
		rows[i].Stats = &st
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, funding bool, extra ...string) {
	keys := []string{cache.KeyProjects, cache.KeySingleProject, cache.KeyMedia}
	if funding {
		keys = append(keys, cache.KeyFundingSources)
	}
	s.cache.Invalidate(ctx, append(keys, extra...)...)
}
