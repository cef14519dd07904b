package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/service/reaction"
	"civic-project-system/internal/store"
	"civic-project-system/tools"

	"github.com/xuri/excelize/v2"
)

// CreateReport 先确认目标存在再上传，事务内重新检查
func (s *Service) CreateReport(ctx context.Context, actor permission.Actor, target model.Target, content string, files media.Files) (*model.Report, error) {
	content = strings.TrimSpace(content)
	if err := response.BadRequestIf(content == "", "Please provide content"); err != nil {
		return nil, err
	}
	if _, err := reaction.Resolve(ctx, s.store, target); err != nil {
		return nil, err
	}
	blobs, err := s.media.Prepare(ctx, files)
	if err != nil {
		return nil, err
	}

	r := &model.Report{Content: content, Status: model.ReportPending, ReportedBy: actor.ID}
	r.SetTarget(target)
	var projectID uint
	err = s.media.Transaction(ctx, blobs, func(tx store.Store, op *media.Op) error {
		var err error
		if projectID, err = reaction.Resolve(ctx, tx, target); err != nil {
			return err
		}
		dup, err := tx.Reports().ExistsContent(ctx, actor.ID, target, content)
		if err != nil {
			return err
		}
		if err := response.ConflictIf(dup, "Report already exists. Change your report content"); err != nil {
			return err
		}
		if err := tx.Reports().Create(ctx, r); err != nil {
			return err
		}
		rows, err := op.Attach(ctx, model.ReportOwner(r.ID), blobs)
		r.Media = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	if r.Media == nil {
		r.Media = []model.Media{}
	}
	s.invalidateReportTarget(ctx, target, projectID)
	return r, nil
}

// invalidateReportTarget 评论列表带有举报数
func (s *Service) invalidateReportTarget(ctx context.Context, target model.Target, projectID uint) {
	if target.Kind == model.TargetComment {
		s.cache.Invalidate(ctx, cache.CommentsKey(projectID))
	}
}

func report(ctx context.Context, st store.Store, id uint) (*model.Report, error) {
	r, err := st.Reports().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NotFoundf("Report")
	}
	return r, err
}

func (s *Service) GetReport(ctx context.Context, id uint) (*model.Report, error) {
	return report(ctx, s.store, id)
}

// UpdateReport 只修改状态
func (s *Service) UpdateReport(ctx context.Context, id uint, status model.ReportStatus) (*model.Report, error) {
	if err := response.BadRequestIf(status == "", "Status is required"); err != nil {
		return nil, err
	}
	if err := response.BadRequestIf(!status.Valid(), "Invalid status"); err != nil {
		return nil, err
	}
	var r *model.Report
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if r, err = report(ctx, tx, id); err != nil {
			return err
		}
		if err := response.ConflictIf(r.Status == status, "Report is already %s", status); err != nil {
			return err
		}
		r.Status = status
		return tx.Reports().Save(ctx, r)
	})
	return r, err
}

func (s *Service) DeleteReport(ctx context.Context, actor permission.Actor, id uint) error {
	var (
		target    model.Target
		projectID uint
	)
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		r, err := report(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := permission.Check(actor, r.ReportedBy); err != nil {
			return err
		}
		target, _ = r.Target()
		if projectID, err = reaction.Resolve(ctx, tx, target); err != nil {
			return err
		}
		if _, err := op.DetachOwner(ctx, model.ReportOwner(id)); err != nil {
			return err
		}
		return tx.Reports().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateReportTarget(ctx, target, projectID)
	return nil
}

func (s *Service) DeleteAllReports(ctx context.Context) (int64, error) {
	var n int64
	err := s.media.Transaction(ctx, nil, func(tx store.Store, op *media.Op) error {
		rows, err := tx.Media().ListByOwnerKind(ctx, model.OwnerReport)
		if err != nil {
			return err
		}
		if err := op.Detach(ctx, rows); err != nil {
			return err
		}
		if n, err = tx.Reports().DeleteAll(ctx); err != nil {
			return err
		}
		return response.NoContentIf(n == 0, "No reports found")
	})
	return n, err
}

func (s *Service) ListReports(ctx context.Context, q store.ReportQuery) (*Listing[model.Report], error) {
	rows, total, err := s.store.Reports().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return listing(rows, total), nil
}

// reportRow 导出表格的一行
type reportRow struct {
	ID         uint      `excel:"ID"`
	Content    string    `excel:"Content"`
	Status     string    `excel:"Status"`
	TargetKind string    `excel:"Target"`
	TargetID   uint      `excel:"Target ID"`
	ReportedBy uint      `excel:"Reported By"`
	MediaCount int       `excel:"Media"`
	CreatedAt  time.Time `excel:"Created At"`
}

const reportSheet = "Reports"

// ExportReports 按同样的过滤条件导出全部举报，不分页
func (s *Service) ExportReports(ctx context.Context, q store.ReportQuery) (*excelize.File, error) {
	q.Page = store.Page{}
	rows, _, err := s.store.Reports().List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]reportRow, 0, len(rows))
	for _, r := range rows {
		t, _ := r.Target()
		out = append(out, reportRow{
			ID:         r.ID,
			Content:    r.Content,
			Status:     string(r.Status),
			TargetKind: string(t.Kind),
			TargetID:   t.ID,
			ReportedBy: r.ReportedBy,
			MediaCount: len(r.Media),
			CreatedAt:  r.CreatedAt,
		})
	}

	f := excelize.NewFile()
	if err := tools.ExportToExcel(f, reportSheet, out); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("export reports: %w", err)
	}
	return f, nil
}
