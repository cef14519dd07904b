package project

import (
	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"

	"github.com/gin-gonic/gin"
)

// MediaReq JSON 请求体里的媒体引用
type MediaReq struct {
	Media []media.Ref `json:"media"`
}

type PresignReq struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

// mediaFiles 只在 JSON 请求时解析请求体
func mediaFiles(c *gin.Context) (media.Files, error) {
	var req MediaReq
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			return media.Files{}, err
		}
	}
	return request.Files(c, req.Media)
}

func ListMedia(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	page, err := request.Page(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := projects.ListMedia(c.Request.Context(), id, model.MediaType(c.Query("type")), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func AppendMedia(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	files, err := mediaFiles(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	rows, err := projects.AppendMedia(c.Request.Context(), request.Actor(c), id, files)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Media uploaded", "media": rows})
}

func ReplaceMedia(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	files, err := mediaFiles(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	added, removed, err := projects.ReplaceMedia(c.Request.Context(), request.Actor(c), id, files)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("project media replaced", "project_id", id, "added", len(added), "removed", len(removed))
	response.Success(c, gin.H{"message": "Media updated", "added": added, "removed": removed})
}

func DeleteAllMedia(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	n, err := projects.DeleteAllMedia(c.Request.Context(), request.Actor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "All media deleted", "count": n})
}

// DeleteMedia 请求头 media_url 存在时必须与记录一致
func DeleteMedia(c *gin.Context) {
	projectID, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	mediaID, err := request.ID(c, "mediaId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	err = projects.DeleteMedia(c.Request.Context(), request.Actor(c), projectID, mediaID, c.GetHeader("media_url"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Media deleted"})
}

// Presign 客户端直传对象存储，上传后以 key 引用
func Presign(c *gin.Context) {
	var req PresignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	up, err := manager.Presign(c.Request.Context(), req.Name, req.ContentType, req.Size)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, up)
}
