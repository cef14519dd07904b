package gormstore

import (
	"context"

	"civic-project-system/internal/model"

	"gorm.io/gorm"
)

type tagRepo struct {
	db *gorm.DB
}

func (r tagRepo) List(ctx context.Context) ([]model.Tag, error) {
	var rows []model.Tag
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r tagRepo) FindByNames(ctx context.Context, names []string) ([]model.Tag, error) {
	var rows []model.Tag
	if len(names) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r tagRepo) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		var t model.Tag
		if err := r.db.WithContext(ctx).Where(model.Tag{Name: name}).FirstOrCreate(&t).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

type fundingSourceRepo struct {
	repo[model.FundingSource]
}

func (r fundingSourceRepo) FindOrCreate(ctx context.Context, name string) (*model.FundingSource, error) {
	var f model.FundingSource
	if err := r.db.WithContext(ctx).Where(model.FundingSource{Name: name}).FirstOrCreate(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}
