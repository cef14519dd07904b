package engagement

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
	"civic-project-system/tools"

	"gorm.io/datatypes"
)

// ProgressInput multipart 表单字段，编辑时空字段表示不修改
type ProgressInput struct {
	Date     string  `form:"date" json:"date"`
	Remarks  *string `form:"remarks" json:"remarks"`
	Progress string  `form:"progress" json:"progress"`
}

const duplicateProgress = "Progress value for project already exists"

func parseProgress(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return 0, response.ErrBadRequest.WithMessage("Invalid progress format")
	}
	return n, nil
}

// apply 把输入写到记录上，create 时日期与进度必填
func (in ProgressInput) apply(h *model.ProgressHistory, create bool) error {
	if create {
		if err := response.BadRequestIf(strings.TrimSpace(in.Date) == "", "Date is required"); err != nil {
			return err
		}
		if err := response.BadRequestIf(strings.TrimSpace(in.Progress) == "", "Progress is required"); err != nil {
			return err
		}
	}
	if in.Date != "" {
		d, ok := tools.ParseDate(in.Date)
		if !ok {
			return response.ErrBadRequest.WithMessage("Invalid date format")
		}
		h.Date = datatypes.Date(d)
	}
	if in.Progress != "" {
		n, err := parseProgress(in.Progress)
		if err != nil {
			return err
		}
		h.Progress = n
	}
	if in.Remarks != nil {
		h.Remarks = *in.Remarks
	}
	return nil
}

// ownedProject 只有项目创建者或管理员能维护进度
func ownedProject(ctx context.Context, tx store.Store, actor permission.Actor, projectID uint) (*model.Project, error) {
	p, err := project(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	return p, permission.Check(actor, p.CreatedBy)
}

func progressRecord(ctx context.Context, tx store.Store, projectID, id uint) (*model.ProgressHistory, error) {
	h, err := tx.Progress().Get(ctx, projectID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NotFoundf("Progress history")
	}
	return h, err
}

// writeProgress 进度唯一性与项目派生状态，在同一事务中完成
func writeProgress(ctx context.Context, tx store.Store, p *model.Project, h *model.ProgressHistory) error {
	dup, err := tx.Progress().ExistsProgress(ctx, p.ID, h.Progress, h.ID)
	if err != nil {
		return err
	}
	if err := response.ConflictIf(dup, duplicateProgress); err != nil {
		return err
	}
	derive := true
	if h.ID == 0 {
		err = tx.Progress().Create(ctx, h)
	} else {
		derive, err = highest(ctx, tx, h)
		if err == nil {
			err = tx.Progress().Save(ctx, h)
		}
	}
	if errors.Is(err, store.ErrDuplicate) {
		return response.ErrConflict.WithMessage(duplicateProgress).WithOrigin(err)
	}
	if err != nil || !derive {
		return err
	}
	p.ApplyProgress(h.Progress, h.Time())
	return tx.Projects().Save(ctx, p)
}

// highest 修改的记录是否为项目当前最高进度；只有它才会改写项目的派生字段
func highest(ctx context.Context, tx store.Store, h *model.ProgressHistory) (bool, error) {
	rows, _, err := tx.Progress().List(ctx, h.ProjectID, store.ProgressQuery{})
	if err != nil {
		return false, err
	}
	for _, o := range rows {
		if o.ID != h.ID && o.Progress > h.Progress {
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) CreateProgress(ctx context.Context, actor permission.Actor, projectID uint, in ProgressInput, files media.Files) (*model.ProgressHistory, error) {
	h := &model.ProgressHistory{ProjectID: projectID, CreatedBy: actor.ID}
	if err := in.apply(h, true); err != nil {
		return nil, err
	}
	if _, err := ownedProject(ctx, s.store, actor, projectID); err != nil {
		return nil, err
	}
	blobs, err := s.media.Prepare(ctx, files)
	if err != nil {
		return nil, err
	}

	err = s.media.Transaction(ctx, blobs, func(tx store.Store, op *media.Op) error {
		p, err := ownedProject(ctx, tx, actor, projectID)
		if err != nil {
			return err
		}
		if err := writeProgress(ctx, tx, p, h); err != nil {
			return err
		}
		rows, err := op.Attach(ctx, model.ProgressOwner(h.ID), blobs)
		h.Media = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	if h.Media == nil {
		h.Media = []model.Media{}
	}
	s.invalidateProject(ctx)
	return h, nil
}

// EditProgress files 为 nil 时不修改媒体，否则按 key 替换
func (s *Service) EditProgress(ctx context.Context, actor permission.Actor, projectID, id uint, in ProgressInput, files *media.Files) (*model.ProgressHistory, error) {
	if _, err := ownedProject(ctx, s.store, actor, projectID); err != nil {
		return nil, err
	}
	var blobs []objectstore.Blob
	if files != nil {
		var err error
		if blobs, err = s.media.Prepare(ctx, *files); err != nil {
			return nil, err
		}
	}

	var h *model.ProgressHistory
	err := s.media.Transaction(ctx, blobs, func(tx store.Store, op *media.Op) error {
		p, err := ownedProject(ctx, tx, actor, projectID)
		if err != nil {
			return err
		}
		if h, err = progressRecord(ctx, tx, projectID, id); err != nil {
			return err
		}
		if err := in.apply(h, false); err != nil {
			return err
		}
		if err := writeProgress(ctx, tx, p, h); err != nil {
			return err
		}
		if files == nil {
			return nil
		}
		if _, _, err := op.Replace(ctx, model.ProgressOwner(id), blobs); err != nil {
			return err
		}
		h.Media, err = tx.Media().ListByOwner(ctx, model.ProgressOwner(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateProject(ctx)
	return h, nil
}

// DeleteProgress 先摘除媒体再删记录
func (s *Service) DeleteProgress(ctx context.Context, actor permission.Actor, projectID, id uint) error {
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		if _, err := ownedProject(ctx, tx, actor, projectID); err != nil {
			return err
		}
		if _, err := progressRecord(ctx, tx, projectID, id); err != nil {
			return err
		}
		if _, err := op.DetachOwner(ctx, model.ProgressOwner(id)); err != nil {
			return err
		}
		return tx.Progress().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateProject(ctx)
	return nil
}

func (s *Service) DeleteAllProgress(ctx context.Context, actor permission.Actor, projectID uint) (int64, error) {
	var n int64
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		if _, err := ownedProject(ctx, tx, actor, projectID); err != nil {
			return err
		}
		rows, _, err := tx.Progress().List(ctx, projectID, store.ProgressQuery{})
		if err != nil {
			return err
		}
		if err := response.NoContentIf(len(rows) == 0, "No progress history"); err != nil {
			return err
		}
		for _, h := range rows {
			if err := op.Detach(ctx, h.Media); err != nil {
				return err
			}
		}
		n, err = tx.Progress().DeleteByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.invalidateProject(ctx)
	return n, nil
}

func (s *Service) ListProgress(ctx context.Context, projectID uint, q store.ProgressQuery) (*Listing[model.ProgressHistory], error) {
	if _, err := project(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	rows, total, err := s.store.Progress().List(ctx, projectID, q)
	if err != nil {
		return nil, err
	}
	return listing(rows, total), nil
}

func (s *Service) GetProgress(ctx context.Context, projectID, id uint) (*model.ProgressHistory, error) {
	if _, err := project(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	return progressRecord(ctx, s.store, projectID, id)
}
