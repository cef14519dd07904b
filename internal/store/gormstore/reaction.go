package gormstore

import (
	"context"
	"time"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
)

type reactionRepo struct {
	db *gorm.DB
}

func (r reactionRepo) Find(ctx context.Context, userID uint, target model.Target) (*model.Reaction, error) {
	var rc model.Reaction
	err := r.db.WithContext(ctx).
		Where("reacted_by = ?", userID).
		Where(targetColumn(target.Kind)+" = ?", target.ID).
		First(&rc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rc, nil
}

func (r reactionRepo) Get(ctx context.Context, id uint) (*model.Reaction, error) {
	var rc model.Reaction
	if err := r.db.WithContext(ctx).First(&rc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rc, nil
}

func (r reactionRepo) Create(ctx context.Context, rc *model.Reaction) error {
	return translate(r.db.WithContext(ctx).Create(rc).Error)
}

// UpdateType 只改一列，绕过整行校验钩子
func (r reactionRepo) UpdateType(ctx context.Context, id uint, t model.ReactionType) error {
	return affected(r.db.WithContext(ctx).Model(&model.Reaction{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"reaction_type": t, "updated_at": time.Now()}))
}

func (r reactionRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Reaction{}, id))
}

func (r reactionRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Reaction{})
	return res.RowsAffected, translate(res.Error)
}

func (r reactionRepo) List(ctx context.Context, q store.ReactionQuery) ([]model.Reaction, int64, error) {
	filter := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Reaction{})
		if q.Type != "" {
			db = db.Where("reaction_type = ?", q.Type)
		}
		if q.Kind != "" {
			db = db.Where(targetColumn(q.Kind) + " IS NOT NULL")
		}
		if q.Target != nil {
			db = db.Where(targetColumn(q.Target.Kind)+" = ?", q.Target.ID)
		}
		return db
	}
	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []model.Reaction
	err := paginate(filter(), q.Page).Order(order(q.Desc)).Find(&rows).Error
	return rows, total, translate(err)
}

func (r reactionRepo) Counts(ctx context.Context, target model.Target) (model.ReactionCounts, error) {
	var groups []struct {
		ReactionType model.ReactionType
		N            int64
	}
	err := r.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("reaction_type, count(*) AS n").
		Where(targetColumn(target.Kind)+" = ?", target.ID).
		Group("reaction_type").
		Scan(&groups).Error
	if err != nil {
		return model.ReactionCounts{}, translate(err)
	}
	var counts model.ReactionCounts
	for _, g := range groups {
		switch g.ReactionType {
		case model.ReactionLike:
			counts.Likes = g.N
		case model.ReactionDislike:
			counts.Dislikes = g.N
		}
	}
	return counts, nil
}
