package report

import (
	"fmt"
	"time"

	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/store"
	"civic-project-system/tools"

	"github.com/gin-gonic/gin"
)

// CreateReq multipart 时 media[] 为文件；JSON 时 media 为引用
type CreateReq struct {
	Content string      `json:"content" form:"content"`
	Media   []media.Ref `json:"media" form:"-"`
}

type UpdateReq struct {
	Status model.ReportStatus `json:"status"`
}

func Create(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			response.Fail(c, err)
			return
		}
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
		target := model.Target{Kind: kind, ID: id}
		r, err := reports.CreateReport(c.Request.Context(), actor, target, req.Content, files)
		if err != nil {
			response.Fail(c, err)
			return
		}

		log.Info("report created", "report_id", r.ID, "target", target.String(), "user_id", actor.ID)
		response.Created(c, gin.H{"message": "Report created", "report": r})
	}
}

// query 搜索、状态、目标类型、排序与分页
func query(c *gin.Context) (store.ReportQuery, error) {
	q := store.ReportQuery{
		Search: c.Query("search"),
		Status: model.ReportStatus(c.Query("status")),
		Kind:   model.TargetKind(c.Query("target")),
	}
	if err := response.BadRequestIf(q.Status != "" && !q.Status.Valid(), "Invalid status"); err != nil {
		return q, err
	}
	if err := response.BadRequestIf(q.Kind != "" && !q.Kind.Valid(), "Invalid target"); err != nil {
		return q, err
	}
	var err error
	if q.Desc, err = request.Desc(c); err != nil {
		return q, err
	}
	q.Page, err = request.Page(c)
	return q, err
}

func List(c *gin.Context) {
	q, err := query(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := reports.ListReports(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

// Export 与列表相同的过滤条件，忽略分页
func Export(c *gin.Context) {
	q, err := query(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	f, err := reports.ExportReports(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	name := fmt.Sprintf("reports_%s.xlsx", time.Now().Format("20060102"))
	if err := tools.SendExcel(c, f, name); err != nil {
		log.Error("write export failed", "error", err)
	}
}

func Get(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	r, err := reports.GetReport(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"report": r})
}

func Update(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	r, err := reports.UpdateReport(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": fmt.Sprintf("Report id: %d updated to %s", id, r.Status),
		"report":  r,
	})
}

// Delete 举报人本人或管理员
func Delete(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := reports.DeleteReport(c.Request.Context(), request.Actor(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": fmt.Sprintf("Report id: %d deleted", id)})
}

func DeleteAll(c *gin.Context) {
	n, err := reports.DeleteAllReports(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Warn("all reports deleted", "count", n)
	response.Success(c, gin.H{"message": "All reports deleted", "count": n})
}
