// Package reaction 点赞点踩。项目反应可切换，评论反应只能创建一次
package reaction

import (
	"context"
	"errors"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
)

type Outcome string

const (
	Created Outcome = "created"
	Removed Outcome = "removed"
	Updated Outcome = "updated"
)

type Result struct {
	Outcome  Outcome
	Reaction *model.Reaction
}

// policy 已知现有反应（可能为 nil）时如何处理新的反应
type policy func(ctx context.Context, tx store.Store, existing *model.Reaction, r *model.Reaction) (Result, error)

var policies = map[model.TargetKind]policy{
	model.TargetProject: toggle,
	model.TargetComment: createOnce,
}

type Engine struct {
	store store.Store
	cache *cache.Policy
}

func New(st store.Store, c *cache.Policy) *Engine {
	return &Engine{store: st, cache: c}
}

// Resolve 确认目标存在并返回其所属项目，目标不存在时返回 NotFound
func Resolve(ctx context.Context, st store.Store, t model.Target) (projectID uint, err error) {
	switch t.Kind {
	case model.TargetProject:
		_, err = st.Projects().Get(ctx, t.ID)
		projectID = t.ID
	case model.TargetComment:
		var c *model.Comment
		if c, err = st.Comments().Get(ctx, t.ID); err == nil {
			projectID = c.ProjectID
		}
	default:
		return 0, response.ErrBadRequest.WithMessage("Invalid target")
	}
	if errors.Is(err, store.ErrNotFound) {
		return 0, targetNotFound(t)
	}
	return projectID, err
}

func targetNotFound(t model.Target) error {
	if t.Kind == model.TargetComment {
		return response.NotFoundf("Comment")
	}
	return response.NotFoundf("Project")
}

func validType(t model.ReactionType) error {
	return response.BadRequestIf(!t.Valid(), "Please provide a valid reaction type")
}

func (e *Engine) React(ctx context.Context, actor permission.Actor, target model.Target, t model.ReactionType) (Result, error) {
	if err := validType(t); err != nil {
		return Result{}, err
	}
	apply, ok := policies[target.Kind]
	if !ok {
		return Result{}, response.ErrBadRequest.WithMessage("Invalid reaction target")
	}

	var (
		res       Result
		projectID uint
	)
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if projectID, err = Resolve(ctx, tx, target); err != nil {
			return err
		}
		existing, err := tx.Reactions().Find(ctx, actor.ID, target)
		switch {
		case errors.Is(err, store.ErrNotFound):
			existing = nil
		case err != nil:
			return err
		}
		r := &model.Reaction{ReactionType: t, ReactedBy: actor.ID}
		r.SetTarget(target)
		res, err = apply(ctx, tx, existing, r)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	e.invalidate(ctx, target, projectID)
	return res, nil
}

// toggle 无则创建，同类型取消，异类型切换
func toggle(ctx context.Context, tx store.Store, existing *model.Reaction, r *model.Reaction) (Result, error) {
	switch {
	case existing == nil:
		if err := create(ctx, tx, r, "You have already reacted to this project"); err != nil {
			return Result{}, err
		}
		return Result{Outcome: Created, Reaction: r}, nil
	case existing.ReactionType == r.ReactionType:
		if err := tx.Reactions().Delete(ctx, existing.ID); err != nil {
			return Result{}, err
		}
		return Result{Outcome: Removed, Reaction: existing}, nil
	default:
		if err := tx.Reactions().UpdateType(ctx, existing.ID, r.ReactionType); err != nil {
			return Result{}, err
		}
		existing.ReactionType = r.ReactionType
		return Result{Outcome: Updated, Reaction: existing}, nil
	}
}

func createOnce(ctx context.Context, tx store.Store, existing *model.Reaction, r *model.Reaction) (Result, error) {
	const msg = "You have already reacted to this comment"
	if err := response.ConflictIf(existing != nil, msg); err != nil {
		return Result{}, err
	}
	if err := create(ctx, tx, r, msg); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Created, Reaction: r}, nil
}

// create 唯一索引冲突说明并发请求已经创建了反应
func create(ctx context.Context, tx store.Store, r *model.Reaction, conflict string) error {
	err := tx.Reactions().Create(ctx, r)
	if errors.Is(err, store.ErrDuplicate) {
		return response.ErrConflict.WithMessage("%s", conflict).WithOrigin(err)
	}
	return err
}

// owned 反应必须属于 target 且由本人创建
func (e *Engine) owned(ctx context.Context, tx store.Store, actor permission.Actor, target model.Target, id uint, action string) (*model.Reaction, uint, error) {
	projectID, err := Resolve(ctx, tx, target)
	if err != nil {
		return nil, 0, err
	}
	r, err := tx.Reactions().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, response.NotFoundf("Reaction")
	}
	if err != nil {
		return nil, 0, err
	}
	if got, ok := r.Target(); !ok || got != target {
		return nil, 0, response.NotFoundf("Reaction")
	}
	if err := permission.CheckSelf(actor, r.ReactedBy, action); err != nil {
		return nil, 0, err
	}
	return r, projectID, nil
}

func (e *Engine) Edit(ctx context.Context, actor permission.Actor, target model.Target, id uint, t model.ReactionType) (*model.Reaction, error) {
	if err := validType(t); err != nil {
		return nil, err
	}
	var (
		r         *model.Reaction
		projectID uint
	)
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if r, projectID, err = e.owned(ctx, tx, actor, target, id, "edit this reaction"); err != nil {
			return err
		}
		if err := response.ConflictIf(r.ReactionType == t, "You have already reacted with this type"); err != nil {
			return err
		}
		r.ReactionType = t
		return tx.Reactions().UpdateType(ctx, id, t)
	})
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, target, projectID)
	return r, nil
}

func (e *Engine) Delete(ctx context.Context, actor permission.Actor, target model.Target, id uint) error {
	var projectID uint
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if _, projectID, err = e.owned(ctx, tx, actor, target, id, "delete this reaction"); err != nil {
			return err
		}
		return tx.Reactions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	e.invalidate(ctx, target, projectID)
	return nil
}

// Listing 列表及总数，按目标列出时附带计数
type Listing struct {
	Total     int64                 `json:"total_count"`
	Count     int                   `json:"count"`
	Reactions []model.Reaction      `json:"reactions"`
	Counts    *model.ReactionCounts `json:"counts,omitempty"`
}

// List 管理端列表；不带任何过滤与分页时走缓存
func (e *Engine) List(ctx context.Context, q store.ReactionQuery) (*Listing, error) {
	load := func(ctx context.Context) (*Listing, error) {
		rows, total, err := e.store.Reactions().List(ctx, q)
		if err != nil {
			return nil, err
		}
		return &Listing{Total: total, Count: len(rows), Reactions: rows}, nil
	}
	if q.Type != "" || q.Kind != "" || q.Target != nil || q.Page.Enabled() || !q.Desc {
		return load(ctx)
	}
	return cache.ReadThrough(ctx, e.cache, cache.KeyReactions, load)
}

// ListTarget 某个项目或评论的反应
func (e *Engine) ListTarget(ctx context.Context, target model.Target, q store.ReactionQuery) (*Listing, error) {
	if _, err := Resolve(ctx, e.store, target); err != nil {
		return nil, err
	}
	q.Target = &target
	q.Kind = ""
	rows, total, err := e.store.Reactions().List(ctx, q)
	if err != nil {
		return nil, err
	}
	counts, err := e.store.Reactions().Counts(ctx, target)
	if err != nil {
		return nil, err
	}
	return &Listing{Total: total, Count: len(rows), Reactions: rows, Counts: &counts}, nil
}

func (e *Engine) Counts(ctx context.Context, target model.Target) (model.ReactionCounts, error) {
	return e.store.Reactions().Counts(ctx, target)
}

// DeleteAll 没有任何反应时返回 NoContent
func (e *Engine) DeleteAll(ctx context.Context) (int64, error) {
	n, err := e.store.Reactions().DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := response.NoContentIf(n == 0, "No reactions found"); err != nil {
		return 0, err
	}
	e.cache.Invalidate(ctx, cache.KeyReactions, cache.KeyProjects, cache.KeySingleProject)
	return n, nil
}

// invalidate 项目统计包含点赞数，评论列表包含评论的反应数
func (e *Engine) invalidate(ctx context.Context, target model.Target, projectID uint) {
	keys := []string{cache.KeyReactions}
	switch target.Kind {
	case model.TargetProject:
		keys = append(keys, cache.KeyProjects, cache.KeySingleProject)
	case model.TargetComment:
		keys = append(keys, cache.CommentsKey(projectID))
	}
	e.cache.Invalidate(ctx, keys...)
}
