package memstore

import (
	"context"
	"slices"
	"time"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
)

type conversationRepo struct {
	s *Store
}

func (r conversationRepo) Create(_ context.Context, c *model.Conversation, userIDs []uint) error {
	return r.s.run(func(st *state) error {
		row := model.Conversation{}
		for _, id := range userIDs {
			if _, ok := st.users[id]; !ok {
				return errForeignKey
			}
			row.Users = append(row.Users, model.User{Model: model.Model{ID: id}})
		}
		put(st, st.conversations, &row, r.s.now())
		*c = st.hydrate(row)
		return nil
	})
}

func (r conversationRepo) Get(_ context.Context, id uint) (*model.Conversation, error) {
	var out *model.Conversation
	err := r.s.run(func(st *state) error {
		c, ok := st.conversations[id]
		if !ok {
			return store.ErrNotFound
		}
		h := st.hydrate(c)
		out = &h
		return nil
	})
	return out, err
}

// ListByUser 最近有消息的会话在前
func (r conversationRepo) ListByUser(_ context.Context, userID uint) ([]model.Conversation, error) {
	var rows []model.Conversation
	err := r.s.run(func(st *state) error {
		for _, c := range ordered[model.Conversation](st.conversations) {
			if member(c, userID) {
				rows = append(rows, st.hydrate(c))
			}
		}
		slices.SortStableFunc(rows, func(a, b model.Conversation) int {
			if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
				return c
			}
			return int(b.ID) - int(a.ID)
		})
		return nil
	})
	return rows, err
}

func (r conversationRepo) IsParticipant(_ context.Context, conversationID, userID uint) (bool, error) {
	var ok bool
	err := r.s.run(func(st *state) error {
		c, found := st.conversations[conversationID]
		ok = found && member(c, userID)
		return nil
	})
	return ok, err
}

func (r conversationRepo) Messages(_ context.Context, conversationID uint) ([]model.Message, error) {
	var rows []model.Message
	err := r.s.run(func(st *state) error {
		rows = filter(ordered[model.Message](st.messages), func(m model.Message) bool {
			return m.ConversationID == conversationID
		})
		slices.SortFunc(rows, func(a, b model.Message) int { return byCreated(false)(a.Model, b.Model) })
		for i := range rows {
			if u, ok := st.users[rows[i].SenderID]; ok {
				rows[i].Sender = &u
			}
		}
		return nil
	})
	return rows, err
}

func (r conversationRepo) CreateMessage(_ context.Context, m *model.Message) error {
	return r.s.run(func(st *state) error {
		if err := beforeSave(m); err != nil {
			return err
		}
		c, ok := st.conversations[m.ConversationID]
		if !ok {
			return errForeignKey
		}
		if _, ok := st.users[m.SenderID]; !ok {
			return errForeignKey
		}
		row := *m
		row.ID = 0
		row.Sender, row.Conversation = nil, nil
		now := r.s.now()
		put(st, st.messages, &row, now)
		c.UpdatedAt = now
		st.conversations[c.ID] = c
		m.ID, m.CreatedAt, m.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
		return nil
	})
}

func (r conversationRepo) DeleteMessagesBefore(_ context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.s.run(func(st *state) error {
		for id, m := range st.messages {
			if m.CreatedAt.Before(before) {
				delete(st.messages, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func member(c model.Conversation, userID uint) bool {
	return slices.ContainsFunc(c.Users, func(u model.User) bool { return u.ID == userID })
}

// hydrate 表里只存参与者 id，读出时补全用户行
func (st *state) hydrate(c model.Conversation) model.Conversation {
	users := make([]model.User, 0, len(c.Users))
	for _, u := range c.Users {
		if full, ok := st.users[u.ID]; ok {
			users = append(users, full)
		}
	}
	c.Users = users
	return c
}
