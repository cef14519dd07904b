package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"civic-project-system/config"
	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/internal/store/memstore"
	"civic-project-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type app struct {
	t       *testing.T
	r       *gin.Engine
	objects *objectstore.Local
}

func newApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Mode = config.Mode(gin.TestMode)
	cfg.JWT.AccessSecret = "test-secret"
	cfg.Storage.Driver = "local"
	cfg.Storage.Database = "memory"
	cfg.Cache.Driver = "memory"
	cfg.Local.Dir = t.TempDir()
	cfg.Media.SweepInterval = 0
	config.Set(&cfg)

	st := memstore.New()
	require.NoError(t, st.Tags().Seed(t.Context(), model.TagNames))
	objects := objectstore.NewLocal(cfg.Local.Dir, cfg.Local.BaseURL, cfg.Local.Prefix)
	c := container.New(&cfg, st, objects, cache.NewMemory(), logger.New("Cache"))
	return &app{t: t, r: Router(c), objects: objects}
}

func (a *app) do(r test.Request) *httptest.ResponseRecorder {
	a.t.Helper()
	return test.DoRequest(a.t, a.r, r)
}

type user struct {
	ID    uint
	Token string
}

func (a *app) register(username string, role model.Role, barangayID *uint) user {
	a.t.Helper()
	body := map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"role":     role,
	}
	if barangayID != nil {
		body["barangay_id"] = *barangayID
	}
	w := a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/auth/register", Body: body})
	test.Status(a.t, http.StatusCreated, w)

	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: map[string]string{
		"email":    username + "@example.com",
		"password": "secret123",
	}})
	test.Status(a.t, http.StatusOK, w)
	login := test.Decode[struct {
		Token string     `json:"access_token"`
		User  model.User `json:"user"`
	}](a.t, w)
	return user{ID: login.User.ID, Token: login.Token}
}

func (a *app) barangay(admin user, name string) uint {
	a.t.Helper()
	w := a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/barangays", Token: admin.Token, Body: map[string]string{"name": name}})
	test.Status(a.t, http.StatusCreated, w)
	return test.Decode[struct {
		Data model.Barangay `json:"data"`
	}](a.t, w).Data.ID
}

func (a *app) createProject(u user, title string) model.Project {
	a.t.Helper()
	w := a.do(test.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/projects",
		Token:  u.Token,
		Form:   map[string][]string{"title": {title}, "tags": {"Infrastructure"}},
		Files:  []test.File{{Field: "media[]", Name: "site.png", ContentType: "image/png", Body: []byte("png")}},
	})
	test.Status(a.t, http.StatusCreated, w)
	return test.Decode[struct {
		Project model.Project `json:"project"`
	}](a.t, w).Project
}

func (a *app) getProject(u user, id uint) model.Project {
	a.t.Helper()
	w := a.do(test.Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/v1/projects/%d", id), Token: u.Token})
	test.Status(a.t, http.StatusOK, w)
	return test.Decode[struct {
		Project model.Project `json:"project"`
	}](a.t, w).Project
}

func TestPingAndHealth(t *testing.T) {
	a := newApp(t)
	w := a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/ping"})
	test.Status(t, http.StatusOK, w)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/health"})
	test.Status(t, http.StatusOK, w)
	require.Equal(t, "local", test.Decode[map[string]string](t, w)["storage"])
}

func TestRegisterAndAuth(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", model.RoleResident, nil)

	w := a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/auth/me", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	me := test.Decode[struct {
		User model.User `json:"user"`
	}](t, w)
	require.Equal(t, model.RoleAdmin, me.User.Role, "first user becomes admin")

	b := a.barangay(admin, "San Isidro")
	a.register("official", model.RoleBarangay, &b)
	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/auth/register", Body: map[string]any{
		"username": "official2", "email": "official2@example.com", "password": "secret123",
		"role": model.RoleBarangay, "barangay_id": b,
	}})
	test.ErrorEqual(t, response.ErrConflict, "Barangay has already an existing user", w)

	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/auth/register", Body: map[string]any{
		"username": "short", "email": "short@example.com", "password": "123",
	}})
	test.ErrorEqual(t, response.ErrBadRequest, "password must be at least 6 characters", w)

	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: map[string]string{
		"email": "mayor@example.com", "password": "wrong-password",
	}})
	test.ErrorEqual(t, response.ErrUnauthenticated, "Incorrect password", w)

	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/projects"})
	test.ErrorEqual(t, response.ErrUnauthenticated, "", w)
	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/projects", Token: "garbage"})
	test.ErrorEqual(t, response.ErrTokenInvalid, "", w)
}

func TestRoadRepairScenario(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	b := a.barangay(admin, "San Isidro")
	official := a.register("official", model.RoleBarangay, &b)

	p := a.createProject(official, "Road Repair")
	require.Equal(t, model.StatusPlanned, p.Status)
	require.Zero(t, p.Progress)
	require.Len(t, p.Media, 1)

	progressPath := fmt.Sprintf("/api/v1/projects/%d/progressHistory", p.ID)
	w := a.do(test.Request{Method: http.MethodPost, Path: progressPath, Token: official.Token, Form: map[string][]string{
		"progress": {"100"}, "date": {"2024-06-30"}, "remarks": {"done"},
	}})
	test.Status(t, http.StatusCreated, w)

	got := a.getProject(official, p.ID)
	require.Equal(t, model.StatusCompleted, got.Status)
	require.Equal(t, 100, got.Progress)
	require.NotNil(t, got.CompletionDate)

	w = a.do(test.Request{Method: http.MethodPost, Path: progressPath, Token: official.Token, Form: map[string][]string{
		"progress": {"100"}, "date": {"2024-07-01"},
	}})
	test.ErrorEqual(t, response.ErrConflict, "Progress value for project already exists", w)

	after := a.getProject(official, p.ID)
	require.Equal(t, got.Status, after.Status)
	require.Equal(t, got.Progress, after.Progress)
	require.True(t, got.CompletionDate.Equal(*after.CompletionDate))

	w = a.do(test.Request{Method: http.MethodPost, Path: progressPath, Token: official.Token, Form: map[string][]string{
		"progress": {"60"}, "date": {"2024-07-02"},
	}})
	test.Status(t, http.StatusCreated, w)
	got = a.getProject(official, p.ID)
	require.Equal(t, model.StatusOngoing, got.Status)
	require.Nil(t, got.CompletionDate)

	w = a.do(test.Request{Method: http.MethodGet, Path: progressPath + "?sort=oldest", Token: official.Token})
	test.Status(t, http.StatusOK, w)
	require.EqualValues(t, 2, test.Decode[struct {
		Total int64 `json:"total_count"`
	}](t, w).Total)

	w = a.do(test.Request{Method: http.MethodGet, Path: progressPath + "?sort=newest", Token: official.Token})
	test.ErrorEqual(t, response.ErrBadRequest, "Invalid sort column", w)
}

func TestReactions(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	resident := a.register("juan", model.RoleResident, nil)
	p := a.createProject(admin, "Road Repair")
	projectReactions := fmt.Sprintf("/api/v1/projects/%d/reactions", p.ID)

	react := func(path, kind string) *httptest.ResponseRecorder {
		return a.do(test.Request{Method: http.MethodPost, Path: path, Token: resident.Token, Body: map[string]string{"reaction_type": kind}})
	}

	test.Status(t, http.StatusCreated, react(projectReactions, "like"))
	test.Status(t, http.StatusOK, react(projectReactions, "like"))
	test.Status(t, http.StatusCreated, react(projectReactions, "like"))
	w := react(projectReactions, "dislike")
	test.Status(t, http.StatusCreated, w)
	require.Equal(t, "updated", test.Decode[struct {
		Outcome string `json:"outcome"`
	}](t, w).Outcome)

	w = a.do(test.Request{Method: http.MethodGet, Path: projectReactions, Token: resident.Token})
	test.Status(t, http.StatusOK, w)
	list := test.Decode[struct {
		Total  int64                `json:"total_count"`
		Counts model.ReactionCounts `json:"counts"`
	}](t, w)
	require.EqualValues(t, 1, list.Total)
	require.EqualValues(t, 1, list.Counts.Dislikes)

	w = a.do(test.Request{Method: http.MethodPost, Path: fmt.Sprintf("/api/v1/projects/%d/comments", p.ID), Token: resident.Token, Body: map[string]string{"content": "when?"}})
	test.Status(t, http.StatusCreated, w)
	comment := test.Decode[struct {
		Comment model.Comment `json:"comment"`
	}](t, w).Comment

	commentReactions := fmt.Sprintf("/api/v1/comments/%d/reactions", comment.ID)
	test.Status(t, http.StatusCreated, react(commentReactions, "like"))
	test.ErrorEqual(t, response.ErrConflict, "You have already reacted to this comment", react(commentReactions, "like"))

	w = react(fmt.Sprintf("/api/v1/comments/%d/reactions", comment.ID+100), "like")
	test.ErrorEqual(t, response.ErrNotFound, "Comment not found", w)

	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/reactions", Token: resident.Token})
	test.ErrorEqual(t, response.ErrUnauthorized, "not authorized to access this route", w)
	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/reactions?target=comment", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	require.EqualValues(t, 1, test.Decode[struct {
		Total int64 `json:"total_count"`
	}](t, w).Total)

	w = a.do(test.Request{Method: http.MethodDelete, Path: "/api/v1/reactions", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	w = a.do(test.Request{Method: http.MethodDelete, Path: "/api/v1/reactions", Token: admin.Token})
	test.ErrorEqual(t, response.ErrNoContent, "", w)
}

func TestPermissionsAndCache(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	b1 := a.barangay(admin, "San Isidro")
	b2 := a.barangay(admin, "Poblacion")
	owner := a.register("official", model.RoleBarangay, &b1)
	other := a.register("neighbor", model.RoleBarangay, &b2)
	resident := a.register("juan", model.RoleResident, nil)
	p := a.createProject(owner, "Road Repair")
	path := fmt.Sprintf("/api/v1/projects/%d", p.ID)

	w := a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/projects", Token: resident.Token})
	test.Status(t, http.StatusOK, w)

	for _, u := range []user{other, resident} {
		w = a.do(test.Request{Method: http.MethodPatch, Path: path, Token: u.Token, Body: map[string]string{"title": "Mine"}})
		test.ErrorEqual(t, response.ErrUnauthorized, "not authorized to access this route", w)
	}

	w = a.do(test.Request{Method: http.MethodPatch, Path: path, Token: admin.Token, Body: map[string]string{"title": "Road Rehab"}})
	test.Status(t, http.StatusOK, w)

	// 列表缓存已失效
	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/projects", Token: resident.Token})
	test.Status(t, http.StatusOK, w)
	list := test.Decode[struct {
		Projects []model.Project `json:"projects"`
	}](t, w)
	require.Len(t, list.Projects, 1)
	require.Equal(t, "Road Rehab", list.Projects[0].Title)

	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/projects?page=0", Token: resident.Token})
	test.ErrorEqual(t, response.ErrBadRequest, "Invalid page or limit", w)
	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/projects/abc", Token: resident.Token})
	test.ErrorEqual(t, response.ErrBadRequest, "Invalid id", w)
}

func TestProjectMediaAndDelete(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	p := a.createProject(admin, "Road Repair")
	mediaPath := fmt.Sprintf("/api/v1/projects/%d/media", p.ID)

	w := a.do(test.Request{Method: http.MethodPost, Path: mediaPath, Token: admin.Token, Form: map[string][]string{},
		Files: []test.File{{Field: "media[]", Name: "clip.mp4", ContentType: "video/mp4", Body: []byte("mp4")}}})
	test.Status(t, http.StatusCreated, w)

	w = a.do(test.Request{Method: http.MethodGet, Path: mediaPath + "?type=video", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	require.EqualValues(t, 1, test.Decode[struct {
		Total int64 `json:"total_count"`
	}](t, w).Total)

	w = a.do(test.Request{Method: http.MethodPost, Path: mediaPath, Token: admin.Token, Form: map[string][]string{},
		Files: []test.File{{Field: "media[]", Name: "notes.txt", ContentType: "text/plain", Body: []byte("txt")}}})
	test.ErrorEqual(t, response.ErrBadRequest, "Invalid file type: notes.txt", w)

	first := p.Media[0]
	w = a.do(test.Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", mediaPath, first.ID), Token: admin.Token,
		Headers: map[string]string{"media_url": "http://elsewhere/x.png"}})
	test.ErrorEqual(t, response.ErrBadRequest, "Media url does not match", w)
	w = a.do(test.Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", mediaPath, first.ID), Token: admin.Token,
		Headers: map[string]string{"media_url": first.URL}})
	test.Status(t, http.StatusOK, w)

	w = a.do(test.Request{Method: http.MethodDelete, Path: fmt.Sprintf("/api/v1/projects/%d", p.ID), Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	objects, err := a.objects.List(t.Context())
	require.NoError(t, err)
	require.Empty(t, objects)

	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/maintenance/sweep", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	require.Zero(t, test.Decode[struct {
		Scanned int `json:"scanned"`
	}](t, w).Scanned)

	w = a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/media/presign", Token: admin.Token,
		Body: map[string]any{"name": "a.png", "content_type": "image/png", "size": 10}})
	test.ErrorEqual(t, response.ErrBadRequest, "Direct upload is not supported by the current storage", w)
}

func TestReportsExport(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	resident := a.register("juan", model.RoleResident, nil)
	p := a.createProject(admin, "Road Repair")

	path := fmt.Sprintf("/api/v1/projects/%d/reports", p.ID)
	report := func() *httptest.ResponseRecorder {
		return a.do(test.Request{Method: http.MethodPost, Path: path, Token: resident.Token,
			Form:  map[string][]string{"content": {"overpriced"}},
			Files: []test.File{{Field: "media[]", Name: "proof.jpg", ContentType: "image/jpeg", Body: []byte("jpg")}}})
	}
	test.Status(t, http.StatusCreated, report())
	test.ErrorEqual(t, response.ErrConflict, "Report already exists. Change your report content", report())

	// 冲突时新上传的文件被补偿删除：项目 1 个 + 举报 1 个
	objects, err := a.objects.List(t.Context())
	require.NoError(t, err)
	require.Len(t, objects, 2)

	w := a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/reports/export?status=pending", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	require.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	w = a.do(test.Request{Method: http.MethodDelete, Path: "/api/v1/reports", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	w = a.do(test.Request{Method: http.MethodDelete, Path: "/api/v1/reports", Token: admin.Token})
	test.ErrorEqual(t, response.ErrNoContent, "", w)
}
