package gormstore

import (
	"context"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type commentRepo struct {
	db *gorm.DB
}

func (r commentRepo) Get(ctx context.Context, id uint) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r commentRepo) Create(ctx context.Context, c *model.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r commentRepo) Save(ctx context.Context, c *model.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r commentRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Comment{}, id))
}

func (r commentRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Comment{})
	return res.RowsAffected, translate(res.Error)
}

func (r commentRepo) List(ctx context.Context, q store.CommentQuery) ([]model.Comment, int64, error) {
	filter := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Comment{})
		if q.ProjectID != 0 {
			db = db.Where("project_id = ?", q.ProjectID)
		}
		return db
	}
	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []model.Comment
	err := paginate(filter().Preload("Commenter"), q.Page).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, total, translate(err)
}

func (r commentRepo) Stats(ctx context.Context, ids []uint) (map[uint]model.CommentStats, error) {
	stats := make(map[uint]model.CommentStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}
	type count struct {
		CommentID uint
		N         int64
	}

	var reactions []count
	err := r.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("comment_id, count(*) AS n").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&reactions).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, c := range reactions {
		s := stats[c.CommentID]
		s.ReactionCount = c.N
		stats[c.CommentID] = s
	}

	var reports []count
	err = r.db.WithContext(ctx).Model(&model.Report{}).
		Select("comment_id, count(*) AS n").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&reports).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, c := range reports {
		s := stats[c.CommentID]
		s.ReportCount = c.N
		stats[c.CommentID] = s
	}
	return stats, nil
}
