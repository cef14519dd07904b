package server

import (
	"fmt"
	"net/http"
	"testing"

	"civic-project-system/internal/global/response"
	"civic-project-system/internal/model"
	"civic-project-system/test"

	"github.com/stretchr/testify/require"
)

func (a *app) listUsers(admin user) []model.User {
	a.t.Helper()
	w := a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/users", Token: admin.Token})
	test.Status(a.t, http.StatusOK, w)
	return test.Decode[struct {
		Users []model.User `json:"users"`
	}](a.t, w).Users
}

func usernames(rows []model.User) []string {
	out := make([]string, len(rows))
	for i, u := range rows {
		out[i] = u.Username
	}
	return out
}

func TestUserEditKeepsListCacheCoherent(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	juan := a.register("juan", model.RoleResident, nil)
	path := fmt.Sprintf("/api/v1/users/%d", juan.ID)

	// 先把列表读进缓存
	require.Equal(t, []string{"mayor", "juan"}, usernames(a.listUsers(admin)))

	w := a.do(test.Request{Method: http.MethodPatch, Path: path, Token: admin.Token, Body: map[string]any{"username": "juan.dc"}})
	test.Status(t, http.StatusOK, w)
	require.Equal(t, []string{"mayor", "juan.dc"}, usernames(a.listUsers(admin)))

	w = a.do(test.Request{Method: http.MethodPatch, Path: "/api/v1/users/update-user", Token: juan.Token, Body: map[string]any{"email": "juan@city.gov"}})
	test.Status(t, http.StatusOK, w)
	rows := a.listUsers(admin)
	require.Equal(t, "juan@city.gov", rows[1].Email)

	added := a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/users", Token: admin.Token, Body: map[string]any{
		"username": "assistant", "email": "assistant@example.com", "password": "secret123", "role": model.RoleAssistantAdmin,
	}})
	test.Status(t, http.StatusCreated, added)
	require.Equal(t, []string{"mayor", "juan.dc", "assistant"}, usernames(a.listUsers(admin)))

	w = a.do(test.Request{Method: http.MethodDelete, Path: path, Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	require.Equal(t, fmt.Sprintf("User with id: %d has been deleted", juan.ID), test.Decode[map[string]any](t, w)["message"])
	require.Equal(t, []string{"mayor", "assistant"}, usernames(a.listUsers(admin)))
}

func TestUserPermissions(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	juan := a.register("juan", model.RoleResident, nil)
	maria := a.register("maria", model.RoleResident, nil)
	juanPath := fmt.Sprintf("/api/v1/users/%d", juan.ID)

	w := a.do(test.Request{Method: http.MethodGet, Path: juanPath, Token: juan.Token})
	test.Status(t, http.StatusOK, w)
	w = a.do(test.Request{Method: http.MethodGet, Path: juanPath, Token: maria.Token})
	test.ErrorEqual(t, response.ErrUnauthorized, "not authorized to access this route", w)
	w = a.do(test.Request{Method: http.MethodPatch, Path: juanPath, Token: maria.Token, Body: map[string]any{"username": "x"}})
	test.ErrorEqual(t, response.ErrUnauthorized, "not authorized to access this route", w)
	w = a.do(test.Request{Method: http.MethodDelete, Path: juanPath, Token: maria.Token})
	test.ErrorEqual(t, response.ErrUnauthorized, "not authorized to access this route", w)

	w = a.do(test.Request{Method: http.MethodPatch, Path: juanPath, Token: juan.Token, Body: map[string]any{"role": model.RoleAdmin}})
	test.ErrorEqual(t, response.ErrUnauthorized, "Only an admin can change roles", w)

	w = a.do(test.Request{Method: http.MethodGet, Path: "/api/v1/users/999", Token: admin.Token})
	test.ErrorEqual(t, response.ErrNotFound, "User with id: 999 not found", w)

	for _, r := range []test.Request{
		{Method: http.MethodGet, Path: "/api/v1/users"},
		{Method: http.MethodPost, Path: "/api/v1/users", Body: map[string]any{"username": "x", "email": "x@example.com", "password": "secret123"}},
		{Method: http.MethodDelete, Path: "/api/v1/users"},
	} {
		r.Token = juan.Token
		test.Status(t, http.StatusForbidden, a.do(r))
	}

	// 用户名冲突
	w = a.do(test.Request{Method: http.MethodPatch, Path: juanPath, Token: admin.Token, Body: map[string]any{"username": "maria"}})
	test.ErrorEqual(t, response.ErrConflict, "Username or email already exists", w)
}

func TestUpdateProfilePassword(t *testing.T) {
	a := newApp(t)
	a.register("mayor", "", nil)
	juan := a.register("juan", model.RoleResident, nil)
	path := "/api/v1/users/update-user"

	w := a.do(test.Request{Method: http.MethodPatch, Path: path, Token: juan.Token, Body: map[string]any{}})
	test.ErrorEqual(t, response.ErrBadRequest, "At least one field (username, email, or password) must be provided", w)

	w = a.do(test.Request{Method: http.MethodPatch, Path: path, Token: juan.Token, Body: map[string]any{
		"old_password": "wrong-password", "new_password": "secret456",
	}})
	test.ErrorEqual(t, response.ErrUnauthenticated, "Incorrect old password", w)

	w = a.do(test.Request{Method: http.MethodPatch, Path: path, Token: juan.Token, Body: map[string]any{
		"old_password": "secret123", "new_password": "secret123",
	}})
	test.ErrorEqual(t, response.ErrConflict, "You have already updated your password", w)

	w = a.do(test.Request{Method: http.MethodPatch, Path: path, Token: juan.Token, Body: map[string]any{
		"old_password": "secret123", "new_password": "secret456",
	}})
	test.Status(t, http.StatusOK, w)
	require.Equal(t, "User updated successfully", test.Decode[map[string]any](t, w)["message"])

	login := func(password string) int {
		return a.do(test.Request{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: map[string]string{
			"email": "juan@example.com", "password": password,
		}}).Code
	}
	require.Equal(t, http.StatusUnauthorized, login("secret123"))
	require.Equal(t, http.StatusOK, login("secret456"))
}

func TestDeleteAllUsersRemovesContent(t *testing.T) {
	a := newApp(t)
	admin := a.register("mayor", "", nil)
	b := a.barangay(admin, "San Isidro")
	official := a.register("official", model.RoleBarangay, &b)
	juan := a.register("juan", model.RoleResident, nil)
	p := a.createProject(official, "Road Repair")
	comments := fmt.Sprintf("/api/v1/projects/%d/comments", p.ID)

	w := a.do(test.Request{Method: http.MethodPost, Path: comments, Token: juan.Token, Body: map[string]string{"content": "when?"}})
	test.Status(t, http.StatusCreated, w)
	countComments := func() int64 {
		w := a.do(test.Request{Method: http.MethodGet, Path: comments, Token: admin.Token})
		test.Status(t, http.StatusOK, w)
		return test.Decode[struct {
			Total int64 `json:"total_count"`
		}](t, w).Total
	}
	require.EqualValues(t, 1, countComments())

	w = a.do(test.Request{Method: http.MethodDelete, Path: "/api/v1/users", Token: admin.Token})
	test.Status(t, http.StatusOK, w)
	require.EqualValues(t, 2, test.Decode[map[string]any](t, w)["count"])
	require.Equal(t, []string{"mayor"}, usernames(a.listUsers(admin)))

	// 评论随作者一起删除，评论缓存也已失效
	require.EqualValues(t, 0, countComments())
	// 项目不随创建者删除
	a.getProject(admin, p.ID)

	w = a.do(test.Request{Method: http.MethodDelete, Path: "/api/v1/users", Token: admin.Token})
	test.ErrorEqual(t, response.ErrNoContent, "", w)
}
