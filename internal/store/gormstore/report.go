package gormstore

import (
	"context"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reportRepo struct {
	db *gorm.DB
}

func (r reportRepo) Get(ctx context.Context, id uint) (*model.Report, error) {
	var rp model.Report
	if err := r.db.WithContext(ctx).Preload("Media").First(&rp, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rp, nil
}

func (r reportRepo) Create(ctx context.Context, rp *model.Report) error {
	return translate(r.db.WithContext(ctx).Omit("Media").Create(rp).Error)
}

func (r reportRepo) Save(ctx context.Context, rp *model.Report) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(rp).Error)
}

func (r reportRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Report{}, id))
}

func (r reportRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Report{})
	return res.RowsAffected, translate(res.Error)
}

func (r reportRepo) ExistsContent(ctx context.Context, userID uint, target model.Target, content string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("reported_by = ? AND content = ?", userID, content).
		Where(targetColumn(target.Kind)+" = ?", target.ID).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r reportRepo) List(ctx context.Context, q store.ReportQuery) ([]model.Report, int64, error) {
	filter := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Report{})
		if q.Search != "" {
			db = db.Where("content LIKE ?", "%"+q.Search+"%")
		}
		if q.Status != "" {
			db = db.Where("status = ?", q.Status)
		}
		if q.Kind != "" {
			db = db.Where(targetColumn(q.Kind) + " IS NOT NULL")
		}
		return db
	}
	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []model.Report
	err := paginate(filter().Preload("Media"), q.Page).Order(order(q.Desc)).Find(&rows).Error
	return rows, total, translate(err)
}
