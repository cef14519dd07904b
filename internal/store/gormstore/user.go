package gormstore

import (
	"context"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func (r userRepo) Get(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Omit("Barangay").Create(u).Error)
}

func (r userRepo) Save(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Omit("Barangay").Save(u).Error)
}

func (r userRepo) Delete(ctx context.Context, id uint) (*store.Removal, error) {
	out, err := r.remove(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("id = ?", id) })
	if err == nil && out.Users == 0 {
		return nil, store.ErrNotFound
	}
	return out, err
}

func (r userRepo) DeleteNonAdmins(ctx context.Context) (*store.Removal, error) {
	return r.remove(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("role <> ?", model.RoleAdmin) })
}

// remove comments.commented_by 上的外键不级联，评论、反应与消息先于用户删除
func (r userRepo) remove(ctx context.Context, where func(*gorm.DB) *gorm.DB) (*store.Removal, error) {
	out := &store.Removal{Projects: []uint{}}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := where(tx.Model(&model.User{})).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		err := tx.Model(&model.Comment{}).Where("commented_by IN ?", ids).
			Distinct().Pluck("project_id", &out.Projects).Error
		if err != nil {
			return err
		}
		steps := []func() error{
			func() error { return tx.Where("commented_by IN ?", ids).Delete(&model.Comment{}).Error },
			func() error { return tx.Where("reacted_by IN ?", ids).Delete(&model.Reaction{}).Error },
			func() error { return tx.Where("sender_id IN ?", ids).Delete(&model.Message{}).Error },
			func() error { return tx.Exec("DELETE FROM user_conversations WHERE user_id IN ?", ids).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		res := tx.Where("id IN ?", ids).Delete(&model.User{})
		out.Users = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, translate(err)
}

func (r userRepo) ExistsBarangayUser(ctx context.Context, barangayID, excludeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ? AND barangay_id = ? AND id <> ?", model.RoleBarangay, barangayID, excludeID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r userRepo) List(ctx context.Context, page store.Page) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []model.User
	err := paginate(r.db.WithContext(ctx).Preload("Barangay"), page).Order("id").Find(&rows).Error
	return rows, total, translate(err)
}
