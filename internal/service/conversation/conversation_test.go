package conversation

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store/memstore"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	s      *Service
	st     *memstore.Store
	mem    *cache.Memory
	actors []permission.Actor
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	mem := cache.NewMemory()
	f := &fixture{s: New(st, cache.NewPolicy(mem, slog.Default())), st: st, mem: mem}
	for _, name := range names {
		u := model.User{Username: name, Email: name + "@example.com", Password: "x", Role: model.RoleResident}
		require.NoError(t, st.Users().Create(ctx, &u))
		f.actors = append(f.actors, permission.Actor{ID: u.ID, Role: u.Role})
	}
	return f
}

func (f *fixture) cached(t *testing.T, a permission.Actor) bool {
	t.Helper()
	_, ok, err := f.mem.Get(context.Background(), cache.ConversationsKey(a.ID))
	require.NoError(t, err)
	return ok
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "juan", "maria")
	juan, maria := f.actors[0], f.actors[1]

	c, err := f.s.Create(ctx, juan, maria.ID)
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	require.Len(t, c.Users, 2)
	require.ElementsMatch(t, []string{"juan", "maria"}, []string{c.Users[0].Username, c.Users[1].Username})

	_, err = f.s.Create(ctx, juan, 99)
	require.ErrorIs(t, err, response.ErrNotFound)
	require.Equal(t, "User with ID 99 not found", response.From(err).Message)

	_, err = f.s.Create(ctx, juan, juan.ID)
	require.ErrorIs(t, err, response.ErrBadRequest)
	_, err = f.s.Create(ctx, juan, 0)
	require.ErrorIs(t, err, response.ErrBadRequest)
}

func TestMessagesRequireParticipant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "juan", "maria", "pedro")
	juan, maria, pedro := f.actors[0], f.actors[1], f.actors[2]
	c, err := f.s.Create(ctx, juan, maria.ID)
	require.NoError(t, err)

	m, err := f.s.Send(ctx, juan, c.ID, "  kumusta?  ")
	require.NoError(t, err)
	require.Equal(t, "kumusta?", m.Content)
	require.Equal(t, "juan", m.Sender.Username)
	_, err = f.s.Send(ctx, maria, c.ID, "mabuti")
	require.NoError(t, err)

	got, err := f.s.Messages(ctx, maria, c.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Total)
	require.Equal(t, "kumusta?", got.Messages[0].Content)
	require.Equal(t, "maria", got.Messages[1].Sender.Username)

	_, err = f.s.Messages(ctx, pedro, c.ID)
	require.ErrorIs(t, err, response.ErrUnauthorized)
	require.Equal(t, "Not authorized to access this conversation", response.From(err).Message)
	_, err = f.s.Send(ctx, pedro, c.ID, "hello")
	require.ErrorIs(t, err, response.ErrUnauthorized)
	require.Equal(t, "Not authorized to send messages in this conversation", response.From(err).Message)

	_, err = f.s.Send(ctx, juan, c.ID, "   ")
	require.ErrorIs(t, err, response.ErrBadRequest)
	require.Equal(t, "Invalid message content", response.From(err).Message)
	_, err = f.s.Messages(ctx, juan, c.ID+100)
	require.ErrorIs(t, err, response.ErrNotFound)
}

func TestListCacheInvalidatedOnSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "juan", "maria", "pedro")
	juan, maria, pedro := f.actors[0], f.actors[1], f.actors[2]

	first, err := f.s.Create(ctx, juan, maria.ID)
	require.NoError(t, err)
	second, err := f.s.Create(ctx, juan, pedro.ID)
	require.NoError(t, err)

	list, err := f.s.List(ctx, juan)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	require.True(t, f.cached(t, juan))
	_, err = f.s.List(ctx, pedro)
	require.NoError(t, err)
	require.True(t, f.cached(t, pedro))

	// 新消息把第一个会话排到最前，只清掉参与者的缓存
	time.Sleep(time.Millisecond)
	_, err = f.s.Send(ctx, maria, first.ID, "hi")
	require.NoError(t, err)
	require.False(t, f.cached(t, juan))
	require.True(t, f.cached(t, pedro))

	list, err = f.s.List(ctx, juan)
	require.NoError(t, err)
	require.Equal(t, []uint{first.ID, second.ID}, []uint{list.Conversations[0].ID, list.Conversations[1].ID})

	empty, err := f.s.List(ctx, permission.Actor{ID: 42})
	require.NoError(t, err)
	require.Zero(t, empty.Total)
	require.NotNil(t, empty.Conversations)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "juan", "maria")
	juan, maria := f.actors[0], f.actors[1]
	c, err := f.s.Create(ctx, juan, maria.ID)
	require.NoError(t, err)
	_, err = f.s.Send(ctx, juan, c.ID, "old news")
	require.NoError(t, err)

	require.NoError(t, f.s.DeleteExpired(ctx))
	got, err := f.s.Messages(ctx, juan, c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Total)

	f.s.now = func() time.Time { return time.Now().Add(Retention + time.Hour) }
	require.NoError(t, f.s.DeleteExpired(ctx))
	got, err = f.s.Messages(ctx, juan, c.ID)
	require.NoError(t, err)
	require.Zero(t, got.Total)

	// 会话本身保留
	_, err = f.st.Conversations().Get(ctx, c.ID)
	require.NoError(t, err)
}
