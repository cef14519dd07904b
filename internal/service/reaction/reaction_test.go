package reaction

import (
	"context"
	"log/slog"
	"testing"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
	"civic-project-system/internal/store/memstore"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	e       *Engine
	st      *memstore.Store
	cache   *cache.Memory
	project model.Project
	comment model.Comment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	p := model.Project{Title: "Road Repair", CreatedBy: 1}
	require.NoError(t, st.Projects().Create(ctx, &p))
	c := model.Comment{Content: "Nice", ProjectID: p.ID, CommentedBy: 2}
	require.NoError(t, st.Comments().Create(ctx, &c))
	mem := cache.NewMemory()
	return &fixture{
		e:       New(st, cache.NewPolicy(mem, slog.Default())),
		st:      st,
		cache:   mem,
		project: p,
		comment: c,
	}
}

var alice = permission.Actor{ID: 10, Role: model.RoleResident}

func (f *fixture) rows(t *testing.T, target model.Target) []model.Reaction {
	t.Helper()
	rows, _, err := f.st.Reactions().List(context.Background(), store.ReactionQuery{Target: &target})
	require.NoError(t, err)
	return rows
}

func TestProjectToggle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := model.ProjectTarget(f.project.ID)

	res, err := f.e.React(ctx, alice, target, model.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, Created, res.Outcome)
	require.Len(t, f.rows(t, target), 1)

	res, err = f.e.React(ctx, alice, target, model.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, Removed, res.Outcome)
	require.Empty(t, f.rows(t, target))
}

func TestProjectSwitch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := model.ProjectTarget(f.project.ID)

	_, err := f.e.React(ctx, alice, target, model.ReactionLike)
	require.NoError(t, err)
	res, err := f.e.React(ctx, alice, target, model.ReactionDislike)
	require.NoError(t, err)
	require.Equal(t, Updated, res.Outcome)

	rows := f.rows(t, target)
	require.Len(t, rows, 1)
	require.Equal(t, model.ReactionDislike, rows[0].ReactionType)
}

func TestAtMostOneReaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := model.ProjectTarget(f.project.ID)

	seq := []model.ReactionType{
		model.ReactionLike, model.ReactionDislike, model.ReactionDislike,
		model.ReactionLike, model.ReactionLike, model.ReactionDislike,
	}
	for _, typ := range seq {
		_, err := f.e.React(ctx, alice, target, typ)
		require.NoError(t, err)
		require.LessOrEqual(t, len(f.rows(t, target)), 1)
	}
	rows := f.rows(t, target)
	require.Len(t, rows, 1)
	require.Equal(t, model.ReactionDislike, rows[0].ReactionType)
}

func TestCommentCreateOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := model.CommentTarget(f.comment.ID)

	res, err := f.e.React(ctx, alice, target, model.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, Created, res.Outcome)

	_, err = f.e.React(ctx, alice, target, model.ReactionLike)
	require.ErrorIs(t, err, response.ErrConflict)
	require.Equal(t, "You have already reacted to this comment", response.From(err).Message)

	_, err = f.e.React(ctx, alice, target, model.ReactionDislike)
	require.ErrorIs(t, err, response.ErrConflict)
	require.Len(t, f.rows(t, target), 1)
}

func TestReactValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.e.React(ctx, alice, model.ProjectTarget(f.project.ID), "love")
	require.ErrorIs(t, err, response.ErrBadRequest)

	_, err = f.e.React(ctx, alice, model.ProjectTarget(999), model.ReactionLike)
	require.ErrorIs(t, err, response.ErrNotFound)
	require.Equal(t, "Project not found", response.From(err).Message)

	_, err = f.e.React(ctx, alice, model.CommentTarget(999), model.ReactionLike)
	require.ErrorIs(t, err, response.ErrNotFound)
	require.Equal(t, "Comment not found", response.From(err).Message)
}

func TestEditAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := model.ProjectTarget(f.project.ID)
	res, err := f.e.React(ctx, alice, target, model.ReactionLike)
	require.NoError(t, err)
	id := res.Reaction.ID

	admin := permission.Actor{ID: 1, Role: model.RoleAdmin}
	_, err = f.e.Edit(ctx, admin, target, id, model.ReactionDislike)
	require.ErrorIs(t, err, response.ErrUnauthorized)
	require.Equal(t, "You are not allowed to edit this reaction", response.From(err).Message)

	_, err = f.e.Edit(ctx, alice, target, id, model.ReactionLike)
	require.ErrorIs(t, err, response.ErrConflict)

	_, err = f.e.Edit(ctx, alice, model.CommentTarget(f.comment.ID), id, model.ReactionDislike)
	require.ErrorIs(t, err, response.ErrNotFound)

	r, err := f.e.Edit(ctx, alice, target, id, model.ReactionDislike)
	require.NoError(t, err)
	require.Equal(t, model.ReactionDislike, r.ReactionType)

	err = f.e.Delete(ctx, admin, target, id)
	require.ErrorIs(t, err, response.ErrUnauthorized)
	require.NoError(t, f.e.Delete(ctx, alice, target, id))
	require.ErrorIs(t, f.e.Delete(ctx, alice, target, id), response.ErrNotFound)
}

func TestListingAndCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bob := permission.Actor{ID: 11, Role: model.RoleResident}
	target := model.ProjectTarget(f.project.ID)

	_, err := f.e.React(ctx, alice, target, model.ReactionLike)
	require.NoError(t, err)
	all, err := f.e.List(ctx, store.ReactionQuery{Desc: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, all.Total)

	// 写操作后缓存失效，不会返回旧列表
	_, err = f.e.React(ctx, bob, target, model.ReactionDislike)
	require.NoError(t, err)
	all, err = f.e.List(ctx, store.ReactionQuery{Desc: true})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.Total)

	listing, err := f.e.ListTarget(ctx, target, store.ReactionQuery{Type: model.ReactionLike})
	require.NoError(t, err)
	require.EqualValues(t, 1, listing.Total)
	require.Equal(t, model.ReactionCounts{Likes: 1, Dislikes: 1}, *listing.Counts)

	n, err := f.e.DeleteAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	_, err = f.e.DeleteAll(ctx)
	require.ErrorIs(t, err, response.ErrNoContent)
}
