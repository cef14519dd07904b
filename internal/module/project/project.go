package project

import (
	"fmt"
	"strconv"

	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/project"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
)

// CreateReq multipart 或 JSON；JSON 时 media 为已直传文件的引用
type CreateReq struct {
	project.Input
	Media []media.Ref `json:"media" form:"-"`
}

func listQuery(c *gin.Context) (store.ProjectQuery, error) {
	q := store.ProjectQuery{
		Search: c.Query("search"),
		Status: model.ProjectStatus(c.Query("status")),
	}
	if err := response.BadRequestIf(q.Status != "" && !q.Status.Valid(), "Invalid status"); err != nil {
		return q, err
	}
	if raw := c.Query("barangay"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return q, response.ErrBadRequest.WithMessage("Invalid barangay")
		}
		q.BarangayID = uint(id)
	}
	var err error
	q.Page, err = request.Page(c)
	return q, err
}

func List(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := projects.List(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func Get(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	p, err := projects.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"project": p})
}

func Create(c *gin.Context) {
	var req CreateReq
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
	p, err := projects.Create(c.Request.Context(), actor, req.Input, files)
	if err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("project created", "project_id", p.ID, "user_id", actor.ID, "media", len(p.Media))
	response.Created(c, gin.H{"message": "Success! New project created", "project": p})
}

func Update(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var in project.Input
	if err := c.ShouldBind(&in); err != nil {
		response.Fail(c, err)
		return
	}
	p, err := projects.Update(c.Request.Context(), request.Actor(c), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Success! Project updated", "project": p})
}

func Delete(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	actor := request.Actor(c)
	if err := projects.Delete(c.Request.Context(), actor, id); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("project deleted", "project_id", id, "user_id", actor.ID)
	response.Success(c, gin.H{"message": fmt.Sprintf("Project: %d deleted", id)})
}

func DeleteAll(c *gin.Context) {
	n, err := projects.DeleteAll(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Warn("all projects deleted", "count", n, "user_id", request.Actor(c).ID)
	response.Success(c, gin.H{"message": "All projects deleted", "count": n})
}
