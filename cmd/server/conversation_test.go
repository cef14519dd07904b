package server

import (
	"fmt"
	"net/http"
	"testing"

	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/test"

	"github.com/stretchr/testify/require"
)

func TestConversations(t *testing.T) {
	a := newApp(t)
	a.register("mayor", "", nil)
	juan := a.register("juan", model.RoleResident, nil)
	maria := a.register("maria", model.RoleResident, nil)
	pedro := a.register("pedro", model.RoleResident, nil)

	w := a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/conversations", Token: juan.Token, Body: map[string]any{"user_id": maria.ID}})
	test.Status(t, http.StatusCreated, w)
	created := test.Decode[struct {
		Message      string             `json:"message"`
		Conversation model.Conversation `json:"conversation"`
	}](t, w)
	id := created.Conversation.ID
	require.Equal(t, fmt.Sprintf("Conversation created with an ID of: %d", id), created.Message)

	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/conversations", Token: juan.Token, Body: map[string]any{"user_id": 999}})
	test.ErrorEqual(t, response.ErrNotFound, "User with ID 999 not found", w)

	messages := fmt.Sprintf("/api/v1/conversations/%d/messages", id)
	w = a.do(test.Request{Method: http.MethodPost, Path: messages, Token: maria.Token, Body: map[string]string{"content": "Magandang umaga"}})
	test.Status(t, http.StatusCreated, w)
	w = a.do(test.Request{Method: http.MethodPost, Path: messages, Token: pedro.Token, Body: map[string]string{"content": "hi"}})
	test.ErrorEqual(t, response.ErrUnauthorized, "Not authorized to send messages in this conversation", w)
	w = a.do(test.Request{Method: http.MethodGet, Path: messages, Token: pedro.Token})
	test.ErrorEqual(t, response.ErrUnauthorized, "Not authorized to access this conversation", w)

	w = a.do(test.Request{Method: http.MethodGet, Path: messages, Token: juan.Token})
	test.Status(t, http.StatusOK, w)
	got := test.Decode[struct {
		Total    int             `json:"total_msg"`
		Messages []model.Message `json:"messages"`
	}](t, w)
	require.Equal(t, 1, got.Total)
	require.Equal(t, "maria", got.Messages[0].Sender.Username)

	list := func(u user) []model.Conversation {
		w := a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/conversations", Token: u.Token})
		test.Status(t, http.StatusOK, w)
		return test.Decode[struct {
			Conversations []model.Conversation `json:"conversations"`
		}](t, w).Conversations
	}
	require.Len(t, list(maria), 1)
	require.Empty(t, list(pedro))

	// 改名后会话缓存里的参与者资料随之更新
	w = a.do(test.Request{Method: http.MethodPatch, Path: "/api/v1/users/update-user", Token: juan.Token, Body: map[string]any{"username": "juan.dc"}})
	test.Status(t, http.StatusOK, w)
	var names []string
	for _, u := range list(maria)[0].Users {
		names = append(names, u.Username)
	}
	require.ElementsMatch(t, []string{"juan.dc", "maria"}, names)
}
