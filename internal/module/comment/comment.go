package comment

import (
	"fmt"

	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

type ContentReq struct {
	Content string `json:"content"`
}

func Post(c *gin.Context) {
	projectID, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	comment, err := comments.PostComment(c.Request.Context(), request.Actor(c), projectID, req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Comment posted!", "comment": comment})
}

func List(c *gin.Context) {
	projectID, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	page, err := request.Page(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := comments.ListComments(c.Request.Context(), projectID, page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

// ids 路径中的项目 id 与评论 id
func ids(c *gin.Context) (projectID, commentID uint, err error) {
	if projectID, err = request.ID(c, "id"); err != nil {
		return 0, 0, err
	}
	commentID, err = request.ID(c, "commentId")
	return projectID, commentID, err
}

func Edit(c *gin.Context) {
	projectID, commentID, err := ids(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	comment, err := comments.EditComment(c.Request.Context(), request.Actor(c), projectID, commentID, req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Comment updated", "comment": comment})
}

func Delete(c *gin.Context) {
	projectID, commentID, err := ids(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	actor := request.Actor(c)
	if err := comments.DeleteComment(c.Request.Context(), actor, projectID, commentID); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("comment deleted", "comment_id", commentID, "project_id", projectID, "user_id", actor.ID)
	response.Success(c, gin.H{
		"message": fmt.Sprintf("Comment id: %d for Project id: %d deleted!", commentID, projectID),
	})
}

func ListAll(c *gin.Context) {
	page, err := request.Page(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := comments.ListAllComments(c.Request.Context(), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func DeleteAll(c *gin.Context) {
	n, err := comments.DeleteAllComments(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Warn("all comments deleted", "count", n)
	response.Success(c, gin.H{"message": "All comments deleted", "count": n})
}
