package model

import (
	"strings"

	"gorm.io/gorm"
)

// Conversation 两个用户之间的私信会话
type Conversation struct {
	Model
	Users []User `gorm:"many2many:user_conversations;constraint:OnDelete:CASCADE" json:"users"`
}

type Message struct {
	Model
	ConversationID uint          `gorm:"not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SenderID       uint          `gorm:"not null;index" json:"sender_id"`
	Sender         *User         `gorm:"constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Content        string        `gorm:"type:text;not null" json:"content"`
}

func (m *Message) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(m.Content) != "", "content", "Please provide a message content")
	v.check(m.ConversationID != 0, "conversation_id", "Please provide a conversation")
	v.check(m.SenderID != 0, "sender_id", "Please provide a sender")
	return v.err()
}

func (m *Message) BeforeSave(*gorm.DB) error {
	return m.Validate()
}
