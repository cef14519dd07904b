package reaction

import (
	"net/http"

	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/reaction"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
)

type ReactReq struct {
	Type model.ReactionType `json:"reaction_type" binding:"required"`
}

var messages = map[reaction.Outcome]string{
	reaction.Created: "Reaction added",
	reaction.Removed: "Reaction removed",
	reaction.Updated: "Reaction updated",
}

func target(c *gin.Context, kind model.TargetKind) (model.Target, error) {
	id, err := request.ID(c, "id")
	if err != nil {
		return model.Target{}, err
	}
	return model.Target{Kind: kind, ID: id}, nil
}

// query 类型、排序与分页
func query(c *gin.Context) (store.ReactionQuery, error) {
	q := store.ReactionQuery{Type: model.ReactionType(c.Query("type"))}
	if err := response.BadRequestIf(q.Type != "" && !q.Type.Valid(), "Invalid reaction type"); err != nil {
		return q, err
	}
	var err error
	if q.Desc, err = request.Desc(c); err != nil {
		return q, err
	}
	q.Page, err = request.Page(c)
	return q, err
}

// React 项目上再次点同一类型取消，评论上重复反应为冲突
func React(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := target(c, kind)
		if err != nil {
			response.Fail(c, err)
			return
		}
		var req ReactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, err)
			return
		}
		res, err := reactions.React(c.Request.Context(), request.Actor(c), t, req.Type)
		if err != nil {
			response.Fail(c, err)
			return
		}

		status := http.StatusCreated
		if res.Outcome == reaction.Removed {
			status = http.StatusOK
		}
		log.Debug("reaction applied", "target", t.String(), "outcome", res.Outcome)
		c.JSON(status, gin.H{"message": messages[res.Outcome], "outcome": res.Outcome, "reaction": res.Reaction})
	}
}

func ListTarget(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := target(c, kind)
		if err != nil {
			response.Fail(c, err)
			return
		}
		q, err := query(c)
		if err != nil {
			response.Fail(c, err)
			return
		}
		out, err := reactions.ListTarget(c.Request.Context(), t, q)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, out)
	}
}

func Edit(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := target(c, kind)
		if err != nil {
			response.Fail(c, err)
			return
		}
		id, err := request.ID(c, "reactionId")
		if err != nil {
			response.Fail(c, err)
			return
		}
		var req ReactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, err)
			return
		}
		r, err := reactions.Edit(c.Request.Context(), request.Actor(c), t, id, req.Type)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, gin.H{"message": messages[reaction.Updated], "reaction": r})
	}
}

func Delete(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := target(c, kind)
		if err != nil {
			response.Fail(c, err)
			return
		}
		id, err := request.ID(c, "reactionId")
		if err != nil {
			response.Fail(c, err)
			return
		}
		if err := reactions.Delete(c.Request.Context(), request.Actor(c), t, id); err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, gin.H{"message": messages[reaction.Removed]})
	}
}

// List 管理端，可按目标类型过滤
func List(c *gin.Context) {
	q, err := query(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	q.Kind = model.TargetKind(c.Query("target"))
	if err := response.BadRequestIf(q.Kind != "" && !q.Kind.Valid(), "Invalid target"); err != nil {
		response.Fail(c, err)
		return
	}
	out, err := reactions.List(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, out)
}

func DeleteAll(c *gin.Context) {
	n, err := reactions.DeleteAll(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Warn("all reactions deleted", "count", n)
	response.Success(c, gin.H{"message": "Deleted all reactions", "count": n})
}
