package conversation

import (
	"log/slog"

	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/service/conversation"
)

var (
	log           *slog.Logger
	conversations *conversation.Service
)

type ModuleConversation struct{}

func (m *ModuleConversation) GetName() string {
	return "Conversation"
}

func (m *ModuleConversation) Init(c *container.Container) {
	log = logger.New("Conversation")
	conversations = c.Conversations
}
