package engagement

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"civic-project-system/config"
	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"
	"civic-project-system/internal/store/memstore"

	"github.com/stretchr/testify/require"
)

var (
	owner    = permission.Actor{ID: 1, Role: model.RoleBarangay}
	admin    = permission.Actor{ID: 2, Role: model.RoleAdmin}
	resident = permission.Actor{ID: 3, Role: model.RoleResident}
)

type fixture struct {
	s       *Service
	st      *memstore.Store
	objects *objectstore.Local
	project model.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	objects := objectstore.NewLocal(t.TempDir(), "http://localhost/uploads", "media")
	m := media.NewManager(st, objects, config.Media{
		MaxFileSize: 1 << 20,
		MaxFiles:    5,
		Concurrency: 2,
		TimeoutSec:  5,
		SweepGrace:  60,
	})
	p := model.Project{Title: "Road Repair", CreatedBy: owner.ID}
	require.NoError(t, st.Projects().Create(context.Background(), &p))
	return &fixture{
		s:       New(st, m, cache.NewPolicy(cache.NewMemory(), slog.Default())),
		st:      st,
		objects: objects,
		project: p,
	}
}

func ptr[T any](v T) *T { return &v }

func photos(names ...string) media.Files {
	var files media.Files
	for _, name := range names {
		files.Sources = append(files.Sources, media.Source{
			Name:        name,
			ContentType: "image/jpeg",
			Size:        int64(len(name)),
			Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(name)), nil },
		})
	}
	return files
}

func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()
	objects, err := f.objects.List(context.Background())
	require.NoError(t, err)
	return len(objects)
}

func (f *fixture) reload(t *testing.T) *model.Project {
	t.Helper()
	p, err := f.st.Projects().Get(context.Background(), f.project.ID)
	require.NoError(t, err)
	return p
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.s.PostComment(ctx, resident, 999, "hello")
	require.ErrorIs(t, err, response.ErrNotFound)
	_, err = f.s.PostComment(ctx, resident, f.project.ID, "  ")
	require.ErrorIs(t, err, response.ErrBadRequest)

	c, err := f.s.PostComment(ctx, resident, f.project.ID, "When will this finish?")
	require.NoError(t, err)

	list, err := f.s.ListComments(ctx, f.project.ID, store.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)
	require.Equal(t, "Road Repair", list.Project)

	_, err = f.s.EditComment(ctx, owner, f.project.ID, c.ID, "edited")
	require.ErrorIs(t, err, response.ErrUnauthorized)
	_, err = f.s.EditComment(ctx, resident, f.project.ID, c.ID, "When will this finish?")
	require.ErrorIs(t, err, response.ErrConflict)
	require.Equal(t, "Content is the same as the previous", response.From(err).Message)

	edited, err := f.s.EditComment(ctx, admin, f.project.ID, c.ID, "Any update?")
	require.NoError(t, err)
	require.Equal(t, "Any update?", edited.Content)

	// 缓存已失效，列表反映编辑后的内容
	list, err = f.s.ListComments(ctx, f.project.ID, store.Page{})
	require.NoError(t, err)
	require.Equal(t, "Any update?", list.Items[0].Content)
}

func TestDeleteCommentPurgesReportMedia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c, err := f.s.PostComment(ctx, resident, f.project.ID, "spam")
	require.NoError(t, err)
	_, err = f.s.CreateReport(ctx, owner, model.CommentTarget(c.ID), "offensive", photos("a.jpg"))
	require.NoError(t, err)
	require.Equal(t, 1, f.blobCount(t))

	list, err := f.s.ListComments(ctx, f.project.ID, store.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Items[0].Stats.ReportCount)

	require.ErrorIs(t, f.s.DeleteComment(ctx, owner, f.project.ID, c.ID), response.ErrUnauthorized)
	require.NoError(t, f.s.DeleteComment(ctx, resident, f.project.ID, c.ID))
	require.Equal(t, 0, f.blobCount(t))

	rows, _, err := f.st.Reports().List(ctx, store.ReportQuery{})
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = f.s.DeleteAllComments(ctx)
	require.ErrorIs(t, err, response.ErrNoContent)
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := model.ProjectTarget(f.project.ID)

	r, err := f.s.CreateReport(ctx, resident, target, "Unfinished road", photos("a.jpg", "b.jpg"))
	require.NoError(t, err)
	require.Equal(t, model.ReportPending, r.Status)
	require.Len(t, r.Media, 2)

	// 重复内容冲突，刚上传的文件被补偿删除
	_, err = f.s.CreateReport(ctx, resident, target, "Unfinished road", photos("c.jpg"))
	require.ErrorIs(t, err, response.ErrConflict)
	require.Equal(t, "Report already exists. Change your report content", response.From(err).Message)
	require.Equal(t, 2, f.blobCount(t))

	_, err = f.s.CreateReport(ctx, resident, model.CommentTarget(999), "x", media.Files{})
	require.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.s.UpdateReport(ctx, r.ID, "")
	require.ErrorIs(t, err, response.ErrBadRequest)
	_, err = f.s.UpdateReport(ctx, r.ID, "closed")
	require.ErrorIs(t, err, response.ErrBadRequest)
	_, err = f.s.UpdateReport(ctx, r.ID, model.ReportPending)
	require.ErrorIs(t, err, response.ErrConflict)
	require.Equal(t, "Report is already pending", response.From(err).Message)
	updated, err := f.s.UpdateReport(ctx, r.ID, model.ReportResolved)
	require.NoError(t, err)
	require.Equal(t, model.ReportResolved, updated.Status)

	list, err := f.s.ListReports(ctx, store.ReportQuery{Status: model.ReportResolved})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)

	xlsx, err := f.s.ExportReports(ctx, store.ReportQuery{})
	require.NoError(t, err)
	sheet, err := xlsx.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, sheet, 2)
	require.Equal(t, "Unfinished road", sheet[1][1])
	require.NoError(t, xlsx.Close())

	require.ErrorIs(t, f.s.DeleteReport(ctx, owner, r.ID), response.ErrUnauthorized)
	require.NoError(t, f.s.DeleteReport(ctx, resident, r.ID))
	require.Equal(t, 0, f.blobCount(t))

	_, err = f.s.DeleteAllReports(ctx)
	require.ErrorIs(t, err, response.ErrNoContent)
}

func TestProgressCompletionScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.Equal(t, model.StatusPlanned, f.reload(t).Status)

	remarks := "Asphalt laid"
	h, err := f.s.CreateProgress(ctx, owner, f.project.ID, ProgressInput{Date: "2024-03-01", Remarks: &remarks, Progress: "100"}, photos("IMG_20240301_1.jpg"))
	require.NoError(t, err)
	require.Len(t, h.Media, 1)
	require.NotNil(t, h.Media[0].RecordedAt)

	p := f.reload(t)
	require.Equal(t, model.StatusCompleted, p.Status)
	require.Equal(t, 100, p.Progress)
	require.NotNil(t, p.CompletionDate)

	// 重复进度值冲突，项目状态保持不变，上传的文件被删除
	_, err = f.s.CreateProgress(ctx, owner, f.project.ID, ProgressInput{Date: "2024-03-02", Progress: "100"}, photos("b.jpg"))
	require.ErrorIs(t, err, response.ErrConflict)
	require.Equal(t, "Progress value for project already exists", response.From(err).Message)
	after := f.reload(t)
	require.Equal(t, model.StatusCompleted, after.Status)
	require.Equal(t, p.CompletionDate, after.CompletionDate)
	require.Equal(t, 1, f.blobCount(t))

	_, err = f.s.CreateProgress(ctx, owner, f.project.ID, ProgressInput{Date: "2024-03-05", Progress: "40"}, media.Files{})
	require.NoError(t, err)
	p = f.reload(t)
	require.Equal(t, model.StatusOngoing, p.Status)
	require.Equal(t, 40, p.Progress)
	require.Nil(t, p.CompletionDate)
}

func TestProgressValidationAndPermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []ProgressInput{
		{Progress: "10"},
		{Date: "2024-01-01"},
		{Date: "yesterday", Progress: "10"},
		{Date: "2024-01-01", Progress: "101"},
		{Date: "2024-01-01", Progress: "ten"},
	}
	for _, in := range cases {
		_, err := f.s.CreateProgress(ctx, owner, f.project.ID, in, media.Files{})
		require.ErrorIs(t, err, response.ErrBadRequest, "%+v", in)
	}

	in := ProgressInput{Date: "2024-01-01T08:00:00Z", Progress: "10"}
	_, err := f.s.CreateProgress(ctx, resident, f.project.ID, in, photos("a.jpg"))
	require.ErrorIs(t, err, response.ErrUnauthorized)
	require.Equal(t, 0, f.blobCount(t))

	_, err = f.s.CreateProgress(ctx, admin, f.project.ID, in, media.Files{})
	require.NoError(t, err)
}

func TestProgressEditAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.s.CreateProgress(ctx, owner, f.project.ID, ProgressInput{Date: "2024-01-01", Progress: "20"}, photos("a.jpg"))
	require.NoError(t, err)
	second, err := f.s.CreateProgress(ctx, owner, f.project.ID, ProgressInput{Date: "2024-02-01", Progress: "50"}, media.Files{})
	require.NoError(t, err)

	// 排除自身的重复检查
	_, err = f.s.EditProgress(ctx, owner, f.project.ID, second.ID, ProgressInput{Progress: "20"}, nil)
	require.ErrorIs(t, err, response.ErrConflict)
	same, err := f.s.EditProgress(ctx, owner, f.project.ID, second.ID, ProgressInput{Progress: "50"}, nil)
	require.NoError(t, err)
	require.Equal(t, 50, same.Progress)

	replaced := photos("b.jpg")
	edited, err := f.s.EditProgress(ctx, owner, f.project.ID, first.ID, ProgressInput{Progress: "100"}, &replaced)
	require.NoError(t, err)
	require.Len(t, edited.Media, 1)
	require.NotEqual(t, first.Media[0].Key, edited.Media[0].Key)
	require.Equal(t, 1, f.blobCount(t))
	require.Equal(t, model.StatusCompleted, f.reload(t).Status)

	// 修改较低进度记录的备注不影响项目状态
	_, err = f.s.EditProgress(ctx, owner, f.project.ID, second.ID, ProgressInput{Remarks: ptr("asphalt delivered")}, nil)
	require.NoError(t, err)
	p := f.reload(t)
	require.Equal(t, model.StatusCompleted, p.Status)
	require.Equal(t, 100, p.Progress)
	require.NotNil(t, p.CompletionDate)

	require.NoError(t, f.s.DeleteProgress(ctx, owner, f.project.ID, first.ID))
	require.Equal(t, 0, f.blobCount(t))
	require.ErrorIs(t, f.s.DeleteProgress(ctx, owner, f.project.ID, first.ID), response.ErrNotFound)

	n, err := f.s.DeleteAllProgress(ctx, owner, f.project.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	_, err = f.s.DeleteAllProgress(ctx, owner, f.project.ID)
	require.ErrorIs(t, err, response.ErrNoContent)

	list, err := f.s.ListProgress(ctx, f.project.ID, store.ProgressQuery{})
	require.NoError(t, err)
	require.Zero(t, list.Total)
}
