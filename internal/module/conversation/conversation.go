package conversation

import (
	"fmt"

	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type CreateReq struct {
	UserID uint `json:"user_id"`
}

type MessageReq struct {
	Content string `json:"content"`
}

func Create(c *gin.Context) {
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	conv, err := conversations.Create(c.Request.Context(), request.Actor(c), req.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, gin.H{
		"message":      fmt.Sprintf("Conversation created with an ID of: %d", conv.ID),
		"conversation": conv,
	})
}

func List(c *gin.Context) {
	out, err := conversations.List(c.Request.Context(), request.Actor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func Messages(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := conversations.Messages(c.Request.Context(), request.Actor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func Send(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req MessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	actor := request.Actor(c)
	msg, err := conversations.Send(c.Request.Context(), actor, id, req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Debug("message sent", "conversation_id", id, "user_id", actor.ID, "message_id", msg.ID)
	response.Created(c, gin.H{"message": msg})
}
