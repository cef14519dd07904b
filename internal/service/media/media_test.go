package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"civic-project-system/config"
	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store"
	"civic-project-system/internal/store/memstore"

	"github.com/stretchr/testify/require"
)

// faultStore 包装本地存储，按需注入失败
type faultStore struct {
	objectstore.Store
	mu          sync.Mutex
	uploads     int
	failUploadN int // 第 n 次上传失败，0 表示不失败
	failDelete  bool
	deleted     []string
}

var errInjected = errors.New("injected failure")

func (f *faultStore) Upload(ctx context.Context, name, contentType string, size int64, body io.Reader) (objectstore.Blob, error) {
	f.mu.Lock()
	f.uploads++
	n := f.uploads
	f.mu.Unlock()
	if f.failUploadN != 0 && n == f.failUploadN {
		return objectstore.Blob{}, errInjected
	}
	return f.Store.Upload(ctx, name, contentType, size, body)
}

func (f *faultStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errInjected
	}
	f.deleted = append(f.deleted, key)
	return f.Store.Delete(ctx, key)
}

type listFailStore struct {
	objectstore.Store
}

func (listFailStore) List(context.Context) ([]objectstore.Object, error) {
	return nil, errInjected
}

func testConfig() config.Media {
	return config.Media{
		MaxFileSize: 1 << 20,
		MaxFiles:    3,
		Concurrency: 1, // 串行，保证注入的失败顺序确定
		TimeoutSec:  5,
		SweepGrace:  60,
	}
}

type fixture struct {
	m       *Manager
	st      *memstore.Store
	objects *faultStore
	project model.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	objects := &faultStore{Store: objectstore.NewLocal(t.TempDir(), "http://localhost/uploads", "media")}
	p := model.Project{Title: "Road Widening", CreatedBy: 1}
	require.NoError(t, st.Projects().Create(context.Background(), &p))
	return &fixture{m: NewManager(st, objects, testConfig()), st: st, objects: objects, project: p}
}

func image(name, body string) Source {
	return Source{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func (f *fixture) stored(t *testing.T) []string {
	t.Helper()
	objects, err := f.objects.List(context.Background())
	require.NoError(t, err)
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	return keys
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	err := f.m.Validate([]Source{{Name: "a.pdf", ContentType: "application/pdf"}})
	require.ErrorIs(t, err, response.ErrBadRequest)

	err = f.m.Validate([]Source{{Name: "big.jpg", ContentType: "image/jpeg", Size: 2 << 20}})
	require.ErrorIs(t, err, response.ErrBadRequest)
	require.Equal(t, "File size must be less than 1MB", response.From(err).Message)

	err = f.m.Validate([]Source{image("1.jpg", "x"), image("2.jpg", "x"), image("3.jpg", "x"), image("4.jpg", "x")})
	require.ErrorIs(t, err, response.ErrBadRequest)

	require.NoError(t, f.m.Validate([]Source{{Name: "clip.mp4", ContentType: "video/mp4", Size: 10}}))
}

func TestUploadFailureRemovesUploadedBlobs(t *testing.T) {
	f := newFixture(t)
	f.objects.failUploadN = 2

	_, err := f.m.Upload(context.Background(), []Source{image("a.jpg", "a"), image("b.jpg", "b")})
	require.ErrorIs(t, err, response.ErrObjectStore)
	require.Empty(t, f.stored(t))
	require.Len(t, f.objects.deleted, 1)
}

func TestTransactionCompensatesOnError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	blobs, err := f.m.Upload(ctx, []Source{image("a.jpg", "a"), image("b.jpg", "b")})
	require.NoError(t, err)
	require.Len(t, f.stored(t), 2)

	boom := errors.New("boom")
	err = f.m.Transaction(ctx, blobs, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, model.ProjectOwner(f.project.ID), blobs)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := f.st.Media().ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Empty(t, f.stored(t))
}

func TestAttachEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	err := f.m.Transaction(ctx, nil, func(tx store.Store, op *Op) error {
		rows, err := op.Attach(ctx, model.ProjectOwner(f.project.ID), nil)
		require.Nil(t, rows)
		return err
	})
	require.NoError(t, err)
}

func TestReplaceDiffsByKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := model.ProjectOwner(f.project.ID)

	first, err := f.m.Upload(ctx, []Source{image("a.jpg", "a"), image("b.jpg", "b")})
	require.NoError(t, err)
	require.NoError(t, f.m.Transaction(ctx, first, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, owner, first)
		return err
	}))

	// 保留 a，去掉 b，新增 c
	extra, err := f.m.Upload(ctx, []Source{image("c.jpg", "c")})
	require.NoError(t, err)
	next := append([]objectstore.Blob{first[0]}, extra...)

	var added, removed []model.Media
	require.NoError(t, f.m.Transaction(ctx, next, func(tx store.Store, op *Op) error {
		var err error
		added, removed, err = op.Replace(ctx, owner, next)
		return err
	}))
	require.Len(t, added, 1)
	require.Equal(t, extra[0].Key, added[0].Key)
	require.Len(t, removed, 1)
	require.Equal(t, first[1].Key, removed[0].Key)

	rows, err := f.st.Media().ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{first[0].Key, extra[0].Key}, rowKeys(rows))
	require.ElementsMatch(t, []string{first[0].Key, extra[0].Key}, f.stored(t))
}

func TestCompensationSkipsCommittedKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := model.ProjectOwner(f.project.ID)

	kept, err := f.m.Upload(ctx, []Source{image("a.jpg", "a")})
	require.NoError(t, err)
	require.NoError(t, f.m.Transaction(ctx, kept, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, owner, kept)
		return err
	}))

	fresh, err := f.m.Upload(ctx, []Source{image("b.jpg", "b")})
	require.NoError(t, err)
	pending := append(kept, fresh...)

	boom := errors.New("boom")
	err = f.m.Transaction(ctx, pending, func(tx store.Store, op *Op) error {
		if _, _, err := op.Replace(ctx, owner, fresh); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// a 仍被行引用，只有 b 被补偿删除
	require.Equal(t, []string{kept[0].Key}, f.stored(t))
	rows, err := f.st.Media().ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDuplicateAttachIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := model.ProjectOwner(f.project.ID)
	blobs, err := f.m.Upload(ctx, []Source{image("a.jpg", "a")})
	require.NoError(t, err)
	require.NoError(t, f.m.Transaction(ctx, blobs, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, owner, blobs)
		return err
	}))

	err = f.m.Transaction(ctx, blobs, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, owner, blobs)
		return err
	})
	require.ErrorIs(t, err, response.ErrConflict)
	// 冲突的 blob 已被提交的行引用，补偿不能删它
	require.Len(t, f.stored(t), 1)
}

func TestPurgeFailureLeavesOrphanForSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := model.ProjectOwner(f.project.ID)
	blobs, err := f.m.Upload(ctx, []Source{image("a.jpg", "a")})
	require.NoError(t, err)
	require.NoError(t, f.m.Transaction(ctx, blobs, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, owner, blobs)
		return err
	}))

	f.objects.failDelete = true
	require.NoError(t, f.m.Transaction(ctx, nil, func(tx store.Store, op *Op) error {
		_, err := op.DetachOwner(ctx, owner)
		return err
	}))
	require.Len(t, f.stored(t), 1)

	f.objects.failDelete = false
	f.m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	report, err := f.m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{blobs[0].Key}, report.Orphans)
	require.Equal(t, 1, report.Deleted)
	require.Empty(t, f.stored(t))
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := model.ProjectOwner(f.project.ID)

	blobs, err := f.m.Upload(ctx, []Source{image("a.jpg", "a")})
	require.NoError(t, err)
	require.NoError(t, f.m.Transaction(ctx, blobs, func(tx store.Store, op *Op) error {
		_, err := op.Attach(ctx, owner, blobs)
		return err
	}))

	// 一致的系统上扫描不做任何事
	report, err := f.m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Scanned)
	require.Empty(t, report.Orphans)
	require.Empty(t, report.Dangling)

	// 新上传但未提交的文件在宽限期内受保护
	pending, err := f.m.Upload(ctx, []Source{image("b.jpg", "b")})
	require.NoError(t, err)
	report, err = f.m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Young)
	require.Empty(t, report.Orphans)

	f.m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	report, err = f.m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{pending[0].Key}, report.Orphans)

	// 再扫一次是幂等的
	report, err = f.m.Sweep(ctx)
	require.NoError(t, err)
	require.Empty(t, report.Orphans)

	// 文件丢失的行只报告不删除
	require.NoError(t, f.objects.Store.Delete(ctx, blobs[0].Key))
	report, err = f.m.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{blobs[0].Key}, report.Dangling)
	rows, err := f.st.Media().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestTickRunsScheduledJobs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// 列举对象失败，扫描报错
	f.m.objects = listFailStore{f.objects}

	var ran []string
	f.m.Schedule(
		Job{Name: "first", Run: func(context.Context) error { ran = append(ran, "first"); return errInjected }},
		Job{Name: "second", Run: func(context.Context) error { ran = append(ran, "second"); return nil }},
	)
	f.m.tick(ctx)
	require.Equal(t, []string{"first", "second"}, ran)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	blobs, err := f.m.Upload(ctx, []Source{image("a.jpg", "a")})
	require.NoError(t, err)

	got, err := f.m.Resolve(ctx, []Ref{{Key: blobs[0].Key, Name: "a.jpg"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, blobs[0].URL, got[0].URL)
	require.Equal(t, "image/jpeg", got[0].MimeType)

	_, err = f.m.Resolve(ctx, []Ref{{Key: "media/missing.jpg"}})
	require.ErrorIs(t, err, response.ErrBadRequest)

	_, err = f.m.Resolve(ctx, []Ref{{Key: blobs[0].Key, URL: "http://elsewhere/x.jpg"}})
	require.ErrorIs(t, err, response.ErrBadRequest)
}

func TestRecordedDate(t *testing.T) {
	got := RecordedDate("IMG_20240105_120000.jpg")
	require.NotNil(t, got)
	require.Equal(t, 2024, got.Year())
	require.Equal(t, time.January, got.Month())
	require.Equal(t, 5, got.Day())

	require.Nil(t, RecordedDate("photo.jpg"))
	require.Nil(t, RecordedDate("IMG_notadate.jpg"))
}

func TestPresign(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.Presign(context.Background(), "a.pdf", "application/pdf", 10)
	require.ErrorIs(t, err, response.ErrBadRequest)

	// 本地存储不支持直传
	_, err = f.m.Presign(context.Background(), "a.jpg", "image/jpeg", 10)
	require.ErrorIs(t, err, response.ErrBadRequest)
	require.Equal(t, "Direct upload is not supported by the current storage", response.From(err).Message)
}
