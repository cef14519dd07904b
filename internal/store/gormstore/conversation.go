package gormstore

import (
	"context"
	"time"

	"civic-project-system/internal/model"

	"gorm.io/gorm"
)

type conversationRepo struct {
	db *gorm.DB
}

func (r conversationRepo) Create(ctx context.Context, c *model.Conversation, userIDs []uint) error {
	c.Users = make([]model.User, len(userIDs))
	for i, id := range userIDs {
		c.Users[i].ID = id
	}
	// 只写关联表，不回写用户行
	return translate(r.db.WithContext(ctx).Omit("Users.*").Create(c).Error)
}

func (r conversationRepo) Get(ctx context.Context, id uint) (*model.Conversation, error) {
	var c model.Conversation
	if err := r.db.WithContext(ctx).Preload("Users").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r conversationRepo) ListByUser(ctx context.Context, userID uint) ([]model.Conversation, error) {
	var rows []model.Conversation
	err := r.db.WithContext(ctx).Preload("Users").
		Joins("JOIN user_conversations uc ON uc.conversation_id = conversations.id AND uc.user_id = ?", userID).
		Order("conversations.updated_at DESC, conversations.id DESC").
		Find(&rows).Error
	return rows, translate(err)
}

func (r conversationRepo) IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("user_conversations").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r conversationRepo) Messages(ctx context.Context, conversationID uint) ([]model.Message, error) {
	var rows []model.Message
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order(order(false)).
		Find(&rows).Error
	return rows, translate(err)
}

// CreateMessage 同时刷新会话的 updated_at，会话列表按最近消息排序
func (r conversationRepo) CreateMessage(ctx context.Context, m *model.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sender", "Conversation").Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).Where("id = ?", m.ConversationID).
			Update("updated_at", m.CreatedAt).Error
	})
	return translate(err)
}

func (r conversationRepo) DeleteMessagesBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&model.Message{})
	return res.RowsAffected, translate(res.Error)
}
