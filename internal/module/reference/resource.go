package reference

import (
	"context"
	"errors"
	"fmt"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/request"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
)

type handlers interface {
	path() string
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// resource 简单参考数据的增删改查；列表走 key 缓存，修改后同时清掉 affects
type resource[T any] struct {
	name     string
	plural   string
	key      string
	affects  []string
	repo     func(st store.Store) store.Repo[T]
	conflict string
	stamp    func(v *T, userID uint)
}

func (res *resource[T]) path() string {
	return res.plural
}

func (res *resource[T]) invalidate(ctx context.Context) {
	policy.Invalidate(ctx, append([]string{res.key}, res.affects...)...)
}

func (res *resource[T]) translate(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return response.NotFoundf(res.name)
	case errors.Is(err, store.ErrDuplicate) && res.conflict != "":
		return response.ErrConflict.WithMessage("%s", res.conflict).WithOrigin(err)
	}
	return err
}

func (res *resource[T]) List(c *gin.Context) {
	rows, err := cache.ReadThrough(c.Request.Context(), policy, res.key, func(ctx context.Context) ([]T, error) {
		rows, err := res.repo(db).List(ctx)
		if rows == nil {
			rows = []T{}
		}
		return rows, err
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(rows), res.plural: rows})
}

func (res *resource[T]) Get(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	v, err := res.repo(db).Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, res.translate(err))
		return
	}
	response.Success(c, gin.H{"data": v})
}

func (res *resource[T]) Create(c *gin.Context) {
	v := new(T)
	if err := c.ShouldBindJSON(v); err != nil {
		response.Fail(c, err)
		return
	}
	if id, ok := any(v).(interface{ SetID(uint) }); ok {
		id.SetID(0)
	}
	if res.stamp != nil {
		res.stamp(v, request.Actor(c).ID)
	}
	ctx := c.Request.Context()
	if err := res.repo(db).Create(ctx, v); err != nil {
		response.Fail(c, res.translate(err))
		return
	}
	res.invalidate(ctx)
	response.Created(c, gin.H{"message": fmt.Sprintf("%s created", res.name), "data": v})
}

// Update 请求体只覆盖给出的字段
func (res *resource[T]) Update(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	ctx := c.Request.Context()
	err = db.Transaction(ctx, func(tx store.Store) error {
		v, err := res.repo(tx).Get(ctx, id)
		if err != nil {
			return res.translate(err)
		}
		if err := c.ShouldBindJSON(v); err != nil {
			return err
		}
		if m, ok := any(v).(interface{ SetID(uint) }); ok {
			m.SetID(id)
		}
		return res.translate(res.repo(tx).Save(ctx, v))
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	res.invalidate(ctx)
	response.Success(c, gin.H{"message": fmt.Sprintf("%s updated successfully", res.name)})
}

func (res *resource[T]) Delete(c *gin.Context) {
	id, err := request.ID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := res.repo(db).Delete(ctx, id); err != nil {
		response.Fail(c, res.translate(err))
		return
	}
	log.Info("reference deleted", "kind", res.plural, "id", id, "user_id", request.Actor(c).ID)
	res.invalidate(ctx)
	response.Success(c, gin.H{"message": fmt.Sprintf("%s deleted successfully", res.name)})
}

// Tags 固定列表，启动时补齐
func Tags(c *gin.Context) {
	tags, err := cache.ReadThrough(c.Request.Context(), policy, cache.KeyTags, func(ctx context.Context) ([]model.Tag, error) {
		return db.Tags().List(ctx)
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(tags), "tags": tags})
}
