// Package gormstore 基于 gorm 的 store.Store 实现
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Projects() store.ProjectRepo           { return projectRepo{s.db} }
func (s *Store) Progress() store.ProgressRepo          { return progressRepo{s.db} }
func (s *Store) Media() store.MediaRepo                { return mediaRepo{s.db} }
func (s *Store) Reactions() store.ReactionRepo         { return reactionRepo{s.db} }
func (s *Store) Comments() store.CommentRepo           { return commentRepo{s.db} }
func (s *Store) Reports() store.ReportRepo             { return reportRepo{s.db} }
func (s *Store) Users() store.UserRepo                 { return userRepo{s.db} }
func (s *Store) Conversations() store.ConversationRepo { return conversationRepo{s.db} }
func (s *Store) Tags() store.TagRepo                   { return tagRepo{s.db} }
func (s *Store) FundingSources() store.FundingSourceRepo {
	return fundingSourceRepo{repo[model.FundingSource]{s.db}}
}
func (s *Store) Barangays() store.Repo[model.Barangay]         { return repo[model.Barangay]{s.db} }
func (s *Store) Announcements() store.Repo[model.Announcement] { return repo[model.Announcement]{s.db} }
func (s *Store) Contacts() store.Repo[model.Contact]           { return repo[model.Contact]{s.db} }

// translate 把驱动错误归一为 store 的哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case isDuplicate(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldriver.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// affected 删除类操作没有命中记录时返回 ErrNotFound
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func paginate(db *gorm.DB, p store.Page) *gorm.DB {
	if !p.Enabled() {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.Limit)
}

func order(desc bool) string {
	if desc {
		return "created_at DESC, id DESC"
	}
	return "created_at ASC, id ASC"
}

func targetColumn(kind model.TargetKind) string {
	if kind == model.TargetComment {
		return "comment_id"
	}
	return "project_id"
}

func ownerColumn(kind model.OwnerKind) string {
	switch kind {
	case model.OwnerProgress:
		return "progress_history_id"
	case model.OwnerReport:
		return "report_id"
	}
	return "project_id"
}

// repo 通用参考数据仓库
type repo[T any] struct {
	db *gorm.DB
}

func (r repo[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, translate(err)
}

func (r repo[T]) Get(ctx context.Context, id uint) (*T, error) {
	var v T
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r repo[T]) Create(ctx context.Context, v *T) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r repo[T]) Save(ctx context.Context, v *T) error {
	return translate(r.db.WithContext(ctx).Save(v).Error)
}

func (r repo[T]) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(new(T), id))
}
