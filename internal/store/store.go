// Package store 定义关系存储的访问契约，gormstore 与 memstore 分别实现
package store

import (
	"context"
	"errors"
	"time"

	"civic-project-system/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store 所有仓库共享同一个事务边界
type Store interface {
	// Transaction 在 fn 返回 error 时回滚；fn 中只能使用传入的 tx
	Transaction(ctx context.Context, fn func(tx Store) error) error

	Projects() ProjectRepo
	Progress() ProgressRepo
	Media() MediaRepo
	Reactions() ReactionRepo
	Comments() CommentRepo
	Reports() ReportRepo
	Users() UserRepo
	Conversations() ConversationRepo
	Tags() TagRepo
	FundingSources() FundingSourceRepo
	Barangays() Repo[model.Barangay]
	Announcements() Repo[model.Announcement]
	Contacts() Repo[model.Contact]
}

// Repo 简单参考数据的通用增删改查
type Repo[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, v *T) error
	Save(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uint) error
}

type ProjectRepo interface {
	// Get 预加载资金来源、标签、所属村与项目媒体
	Get(ctx context.Context, id uint) (*model.Project, error)
	List(ctx context.Context, q ProjectQuery) ([]model.Project, int64, error)
	Create(ctx context.Context, p *model.Project) error
	// Save 更新字段并替换标签与所属村关联
	Save(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context, ids []uint) (map[uint]model.ProjectStats, error)
}

type ProgressRepo interface {
	Get(ctx context.Context, projectID, id uint) (*model.ProgressHistory, error)
	List(ctx context.Context, projectID uint, q ProgressQuery) ([]model.ProgressHistory, int64, error)
	// ExistsProgress excludeID 非零时排除该记录
	ExistsProgress(ctx context.Context, projectID uint, progress int, excludeID uint) (bool, error)
	Create(ctx context.Context, h *model.ProgressHistory) error
	Save(ctx context.Context, h *model.ProgressHistory) error
	Delete(ctx context.Context, id uint) error
	DeleteByProject(ctx context.Context, projectID uint) (int64, error)
}

type MediaRepo interface {
	Create(ctx context.Context, rows []model.Media) error
	Get(ctx context.Context, id uint) (*model.Media, error)
	ListByOwner(ctx context.Context, owner model.Owner) ([]model.Media, error)
	ListByOwnerKind(ctx context.Context, kind model.OwnerKind) ([]model.Media, error)
	List(ctx context.Context, q MediaQuery) ([]model.Media, int64, error)
	// ListProjectTree 项目、其进度记录、针对项目及其评论的举报的全部媒体
	ListProjectTree(ctx context.Context, projectID uint) ([]model.Media, error)
	// ListCommentTree 针对评论的举报媒体，commentID 为 0 时表示全部评论
	ListCommentTree(ctx context.Context, commentID uint) ([]model.Media, error)
	ListAll(ctx context.Context) ([]model.Media, error)
	DeleteIDs(ctx context.Context, ids []uint) (int64, error)
	// ExistingKeys 返回 keys 中仍有记录引用的部分
	ExistingKeys(ctx context.Context, keys []string) (map[string]bool, error)
	AllKeys(ctx context.Context) ([]string, error)
}

type ReactionRepo interface {
	Find(ctx context.Context, userID uint, target model.Target) (*model.Reaction, error)
	Get(ctx context.Context, id uint) (*model.Reaction, error)
	Create(ctx context.Context, r *model.Reaction) error
	UpdateType(ctx context.Context, id uint, t model.ReactionType) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context, q ReactionQuery) ([]model.Reaction, int64, error)
	Counts(ctx context.Context, target model.Target) (model.ReactionCounts, error)
}

type CommentRepo interface {
	Get(ctx context.Context, id uint) (*model.Comment, error)
	Create(ctx context.Context, c *model.Comment) error
	Save(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context, q CommentQuery) ([]model.Comment, int64, error)
	Stats(ctx context.Context, ids []uint) (map[uint]model.CommentStats, error)
}

type ReportRepo interface {
	Get(ctx context.Context, id uint) (*model.Report, error)
	Create(ctx context.Context, r *model.Report) error
	Save(ctx context.Context, r *model.Report) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	ExistsContent(ctx context.Context, userID uint, target model.Target, content string) (bool, error)
	List(ctx context.Context, q ReportQuery) ([]model.Report, int64, error)
}

type UserRepo interface {
	Get(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Save(ctx context.Context, u *model.User) error
	// Delete 连带删除该用户的评论、反应与消息
	Delete(ctx context.Context, id uint) (*Removal, error)
	// DeleteNonAdmins 删除全部非管理员用户
	DeleteNonAdmins(ctx context.Context) (*Removal, error)
	Count(ctx context.Context) (int64, error)
	// ExistsBarangayUser 排除 excludeID 后该村是否已有村级账号
	ExistsBarangayUser(ctx context.Context, barangayID, excludeID uint) (bool, error)
	List(ctx context.Context, page Page) ([]model.User, int64, error)
}

// Removal 删除用户的结果；Projects 为被连带删除评论所在的项目
type Removal struct {
	Users    int64
	Projects []uint
}

type ConversationRepo interface {
	// Create 创建会话并加入参与者
	Create(ctx context.Context, c *model.Conversation, userIDs []uint) error
	Get(ctx context.Context, id uint) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error)
	// Messages 按发送时间升序，带发送者
	Messages(ctx context.Context, conversationID uint) ([]model.Message, error)
	CreateMessage(ctx context.Context, m *model.Message) error
	DeleteMessagesBefore(ctx context.Context, before time.Time) (int64, error)
}

type TagRepo interface {
	List(ctx context.Context) ([]model.Tag, error)
	FindByNames(ctx context.Context, names []string) ([]model.Tag, error)
	// Seed 补齐固定标签
	Seed(ctx context.Context, names []string) error
}

type FundingSourceRepo interface {
	Repo[model.FundingSource]
	FindOrCreate(ctx context.Context, name string) (*model.FundingSource, error)
}
