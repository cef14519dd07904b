package gormstore

import (
	"context"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectRepo struct {
	db *gorm.DB
}

func withProjectDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("FundingSource").Preload("Tags").Preload("Barangays").Preload("Media")
}

func (r projectRepo) Get(ctx context.Context, id uint) (*model.Project, error) {
	var p model.Project
	if err := withProjectDetail(r.db.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r projectRepo) List(ctx context.Context, q store.ProjectQuery) ([]model.Project, int64, error) {
	filter := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Project{})
		if q.Search != "" {
			like := "%" + q.Search + "%"
			db = db.Where("title LIKE ? OR description LIKE ?", like, like)
		}
		if q.Status != "" {
			db = db.Where("status = ?", q.Status)
		}
		if q.BarangayID != 0 {
			sub := r.db.WithContext(ctx).Table("project_barangay").Select("project_id").Where("barangay_id = ?", q.BarangayID)
			db = db.Where("id IN (?)", sub)
		}
		return db
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []model.Project
	err := paginate(withProjectDetail(filter()), q.Page).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, total, translate(err)
}

func (r projectRepo) Create(ctx context.Context, p *model.Project) error {
	return translate(r.db.WithContext(ctx).Omit("FundingSource", "Media").Create(p).Error)
}

func (r projectRepo) Save(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return translate(err)
		}
		if err := replace(tx.Model(p).Association("Tags"), p.Tags); err != nil {
			return translate(err)
		}
		return translate(replace(tx.Model(p).Association("Barangays"), p.Barangays))
	})
}

func replace[T any](a *gorm.Association, values []T) error {
	if len(values) == 0 {
		return a.Clear()
	}
	return a.Replace(values)
}

func (r projectRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Project{}, id))
}

func (r projectRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Project{})
	return res.RowsAffected, translate(res.Error)
}

func (r projectRepo) Stats(ctx context.Context, ids []uint) (map[uint]model.ProjectStats, error) {
	stats := make(map[uint]model.ProjectStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	var comments []struct {
		ProjectID uint
		N         int64
	}
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("project_id, count(*) AS n").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, c := range comments {
		s := stats[c.ProjectID]
		s.CommentCount = c.N
		stats[c.ProjectID] = s
	}

	var reactions []struct {
		ProjectID    uint
		ReactionType model.ReactionType
		N            int64
	}
	err = r.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("project_id, reaction_type, count(*) AS n").
		Where("project_id IN ?", ids).
		Group("project_id, reaction_type").
		Scan(&reactions).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, rc := range reactions {
		s := stats[rc.ProjectID]
		switch rc.ReactionType {
		case model.ReactionLike:
			s.Likes = rc.N
		case model.ReactionDislike:
			s.Dislikes = rc.N
		}
		stats[rc.ProjectID] = s
	}
	return stats, nil
}
