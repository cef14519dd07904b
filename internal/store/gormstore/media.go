package gormstore

import (
	"context"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
)

type mediaRepo struct {
	db *gorm.DB
}

func (r mediaRepo) Create(ctx context.Context, rows []model.Media) error {
	if len(rows) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

func (r mediaRepo) Get(ctx context.Context, id uint) (*model.Media, error) {
	var m model.Media
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r mediaRepo) ListByOwner(ctx context.Context, owner model.Owner) ([]model.Media, error) {
	var rows []model.Media
	err := r.db.WithContext(ctx).Where(ownerColumn(owner.Kind)+" = ?", owner.ID).Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r mediaRepo) ListByOwnerKind(ctx context.Context, kind model.OwnerKind) ([]model.Media, error) {
	var rows []model.Media
	err := r.db.WithContext(ctx).Where(ownerColumn(kind) + " IS NOT NULL").Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r mediaRepo) List(ctx context.Context, q store.MediaQuery) ([]model.Media, int64, error) {
	filter := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Media{}).Where(ownerColumn(q.Owner.Kind)+" = ?", q.Owner.ID)
		if q.Type != "" {
			db = db.Where("mime_type LIKE ?", string(q.Type)+"/%")
		}
		return db
	}
	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []model.Media
	err := paginate(filter(), q.Page).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, total, translate(err)
}

func (r mediaRepo) ListProjectTree(ctx context.Context, projectID uint) ([]model.Media, error) {
	progress := r.db.WithContext(ctx).Model(&model.ProgressHistory{}).Select("id").Where("project_id = ?", projectID)
	comments := r.db.WithContext(ctx).Model(&model.Comment{}).Select("id").Where("project_id = ?", projectID)
	reports := r.db.WithContext(ctx).Model(&model.Report{}).Select("id").
		Where("project_id = ? OR comment_id IN (?)", projectID, comments)

	var rows []model.Media
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Or("progress_history_id IN (?)", progress).
		Or("report_id IN (?)", reports).
		Order("id").
		Find(&rows).Error
	return rows, translate(err)
}

func (r mediaRepo) ListCommentTree(ctx context.Context, commentID uint) ([]model.Media, error) {
	reports := r.db.WithContext(ctx).Model(&model.Report{}).Select("id")
	if commentID != 0 {
		reports = reports.Where("comment_id = ?", commentID)
	} else {
		reports = reports.Where("comment_id IS NOT NULL")
	}
	var rows []model.Media
	err := r.db.WithContext(ctx).Where("report_id IN (?)", reports).Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r mediaRepo) ListAll(ctx context.Context) ([]model.Media, error) {
	var rows []model.Media
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r mediaRepo) DeleteIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Delete(&model.Media{}, ids)
	return res.RowsAffected, translate(res.Error)
}

func (r mediaRepo) ExistingKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}
	var hits []string
	err := r.db.WithContext(ctx).Model(&model.Media{}).Where("object_key IN ?", keys).Pluck("object_key", &hits).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, k := range hits {
		found[k] = true
	}
	return found, nil
}

func (r mediaRepo) AllKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&model.Media{}).Pluck("object_key", &keys).Error
	return keys, translate(err)
}
