package gormstore

import (
	"context"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type progressRepo struct {
	db *gorm.DB
}

func (r progressRepo) Get(ctx context.Context, projectID, id uint) (*model.ProgressHistory, error) {
	var h model.ProgressHistory
	err := r.db.WithContext(ctx).Preload("Media").
		Where("project_id = ? AND id = ?", projectID, id).
		First(&h).Error
	if err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r progressRepo) List(ctx context.Context, projectID uint, q store.ProgressQuery) ([]model.ProgressHistory, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.ProgressHistory{}).
		Where("project_id = ?", projectID).
		Count(&total).Error
	if err != nil {
		return nil, 0, translate(err)
	}

	sort := "date DESC, id DESC"
	if q.Oldest {
		sort = "date ASC, id ASC"
	}
	var rows []model.ProgressHistory
	err = paginate(r.db.WithContext(ctx).Preload("Media").Where("project_id = ?", projectID), q.Page).
		Order(sort).
		Find(&rows).Error
	return rows, total, translate(err)
}

func (r progressRepo) ExistsProgress(ctx context.Context, projectID uint, progress int, excludeID uint) (bool, error) {
	db := r.db.WithContext(ctx).Model(&model.ProgressHistory{}).
		Where("project_id = ? AND progress = ?", projectID, progress)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r progressRepo) Create(ctx context.Context, h *model.ProgressHistory) error {
	return translate(r.db.WithContext(ctx).Omit("Media").Create(h).Error)
}

func (r progressRepo) Save(ctx context.Context, h *model.ProgressHistory) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(h).Error)
}

func (r progressRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&model.ProgressHistory{}, id))
}

func (r progressRepo) DeleteByProject(ctx context.Context, projectID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.ProgressHistory{})
	return res.RowsAffected, translate(res.Error)
}
