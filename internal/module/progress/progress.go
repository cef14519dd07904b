package progress

import (
	"fmt"

	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/service/engagement"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
)

// ProgressReq 表单字段与可选的媒体引用
type ProgressReq struct {
	engagement.ProgressInput
	Media []media.Ref `json:"media" form:"-"`
}

func ids(c *gin.Context) (projectID, historyID uint, err error) {
	if projectID, err = request.ID(c, "id"); err != nil {
		return 0, 0, err
	}
	historyID, err = request.ID(c, "historyId")
	return projectID, historyID, err
}

// sortQuery latest（默认）或 oldest
func sortQuery(c *gin.Context) (store.ProgressQuery, error) {
	var q store.ProgressQuery
	switch c.Query("sort") {
	case "", "latest":
	case "oldest":
		q.Oldest = true
	default:
		return q, response.ErrBadRequest.WithMessage("Invalid sort column")
	}
	var err error
	q.Page, err = request.Page(c)
	return q, err
}

func Create(c *gin.Context) {
	projectID, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ProgressReq
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, err)
		return
	}
	files, err := request.Files(c, req.Media)
	if err != nil {
		response.Fail(c, err)
		return
	}
	actor := request.Actor(c)
	h, err := history.CreateProgress(c.Request.Context(), actor, projectID, req.ProgressInput, files)
	if err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("progress recorded", "project_id", projectID, "progress", h.Progress, "user_id", actor.ID)
	response.Created(c, gin.H{"message": "Progress history created", "progressHistory": h})
}

func List(c *gin.Context) {
	projectID, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	q, err := sortQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := history.ListProgress(c.Request.Context(), projectID, q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func Get(c *gin.Context) {
	projectID, historyID, err := ids(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h, err := history.GetProgress(c.Request.Context(), projectID, historyID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"progressHistory": h})
}

// Edit 请求中没有任何媒体字段时保留原有媒体
func Edit(c *gin.Context) {
	projectID, historyID, err := ids(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ProgressReq
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, err)
		return
	}
	var files *media.Files
	if request.Provided(c, req.Media) {
		f, err := request.Files(c, req.Media)
		if err != nil {
			response.Fail(c, err)
			return
		}
		files = &f
	}
	h, err := history.EditProgress(c.Request.Context(), request.Actor(c), projectID, historyID, req.ProgressInput, files)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":         fmt.Sprintf("Progress history ID: %d updated", historyID),
		"progressHistory": h,
	})
}

func Delete(c *gin.Context) {
	projectID, historyID, err := ids(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := history.DeleteProgress(c.Request.Context(), request.Actor(c), projectID, historyID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": fmt.Sprintf("Progress history ID: %d deleted", historyID)})
}

func DeleteAll(c *gin.Context) {
	projectID, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	n, err := history.DeleteAllProgress(c.Request.Context(), request.Actor(c), projectID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "All progress history deleted", "count": n})
}
