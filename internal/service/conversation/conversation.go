// Package conversation 用户之间的私信。会话列表按用户缓存，消息保留 60 天
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
)

// Retention 早于这个时长的消息由维护任务删除
const Retention = 60 * 24 * time.Hour

type Conversations struct {
	Total         int                  `json:"total_conversation"`
	Conversations []model.Conversation `json:"conversations"`
}

type Messages struct {
	Total    int             `json:"total_msg"`
	Messages []model.Message `json:"messages"`
}

type Service struct {
	store store.Store
	cache *cache.Policy
	log   *slog.Logger
	now   func() time.Time
}

func New(st store.Store, c *cache.Policy) *Service {
	return &Service{store: st, cache: c, log: logger.New("Conversation"), now: time.Now}
}

func (s *Service) invalidate(ctx context.Context, users []model.User) {
	keys := make([]string, len(users))
	for i, u := range users {
		keys[i] = cache.ConversationsKey(u.ID)
	}
	s.cache.Invalidate(ctx, keys...)
}

// Create 发起者与对方都必须存在
func (s *Service) Create(ctx context.Context, actor permission.Actor, otherID uint) (*model.Conversation, error) {
	if err := response.BadRequestIf(otherID == 0, "Please provide the other user"); err != nil {
		return nil, err
	}
	if err := response.BadRequestIf(otherID == actor.ID, "Cannot start a conversation with yourself"); err != nil {
		return nil, err
	}
	c := &model.Conversation{}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		for _, id := range []uint{actor.ID, otherID} {
			_, err := tx.Users().Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return response.ErrNotFound.WithMessage("User with ID %d not found", id)
			}
			if err != nil {
				return err
			}
		}
		if err := tx.Conversations().Create(ctx, c, []uint{actor.ID, otherID}); err != nil {
			return err
		}
		created, err := tx.Conversations().Get(ctx, c.ID)
		if err != nil {
			return err
		}
		c = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, c.Users)

	s.log.Info("conversation created", "conversation_id", c.ID, "user_id", actor.ID, "with", otherID)
	return c, nil
}

// List 当前用户参与的会话，走 conversations:{user} 缓存
func (s *Service) List(ctx context.Context, actor permission.Actor) (*Conversations, error) {
	return cache.ReadThrough(ctx, s.cache, cache.ConversationsKey(actor.ID), func(ctx context.Context) (*Conversations, error) {
		rows, err := s.store.Conversations().ListByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []model.Conversation{}
		}
		return &Conversations{Total: len(rows), Conversations: rows}, nil
	})
}

// participant 会话不存在返回 NotFound，不是参与者返回 Unauthorized
func (s *Service) participant(ctx context.Context, st store.Store, actor permission.Actor, id uint, denied string) (*model.Conversation, error) {
	c, err := st.Conversations().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NotFoundf("Conversation")
	}
	if err != nil {
		return nil, err
	}
	ok, err := st.Conversations().IsParticipant(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := response.UnauthorizedIf(!ok, "%s", denied); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Messages(ctx context.Context, actor permission.Actor, id uint) (*Messages, error) {
	if _, err := s.participant(ctx, s.store, actor, id, "Not authorized to access this conversation"); err != nil {
		return nil, err
	}
	rows, err := s.store.Conversations().Messages(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.Message{}
	}
	return &Messages{Total: len(rows), Messages: rows}, nil
}

// Send 发送后双方的会话列表排序都会变化
func (s *Service) Send(ctx context.Context, actor permission.Actor, id uint, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if err := response.BadRequestIf(content == "", "Invalid message content"); err != nil {
		return nil, err
	}
	m := &model.Message{ConversationID: id, SenderID: actor.ID, Content: content}
	var c *model.Conversation
	err := s.store.Transaction(ctx, func(tx store.Store) (err error) {
		c, err = s.participant(ctx, tx, actor, id, "Not authorized to send messages in this conversation")
		if err != nil {
			return err
		}
		if err := tx.Conversations().CreateMessage(ctx, m); err != nil {
			return err
		}
		m.Sender, err = tx.Users().Get(ctx, actor.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, c.Users)
	return m, nil
}

// DeleteExpired 删除超过保留期的消息
func (s *Service) DeleteExpired(ctx context.Context) error {
	n, err := s.store.Conversations().DeleteMessagesBefore(ctx, s.now().Add(-Retention))
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("expired messages deleted", "count", n, "retention", Retention.String())
	}
	return nil
}
