package request

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"civic-project-system/internal/global/response"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func queryContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestPage(t *testing.T) {
	cases := []struct {
		query string
		want  store.Page
	}{
		{"", store.Page{}},
		{"page=3", store.Page{Page: 3, Limit: DefaultLimit}},
		{"limit=25", store.Page{Page: 1, Limit: 25}},
		{"page=2&limit=100", store.Page{Page: 2, Limit: 100}},
	}
	for _, tc := range cases {
		p, err := Page(queryContext(tc.query))
		require.NoError(t, err, tc.query)
		require.Equal(t, tc.want, p, tc.query)
	}
}

func TestPageRejectsOutOfRange(t *testing.T) {
	for _, query := range []string{
		"page=0",
		"page=-1",
		"limit=0",
		"page=abc",
		"limit=101",
		"page=922337203685477582&limit=10",
		fmt.Sprintf("page=%d&limit=2", int(^uint(0)>>1)),
	} {
		_, err := Page(queryContext(query))
		require.ErrorIs(t, err, response.ErrBadRequest, query)
		require.Equal(t, "Invalid page or limit", response.From(err).Message, query)
	}
}

func TestDesc(t *testing.T) {
	desc, err := Desc(queryContext(""))
	require.NoError(t, err)
	require.True(t, desc)

	desc, err = Desc(queryContext("sort=createdAt"))
	require.NoError(t, err)
	require.False(t, desc)

	_, err = Desc(queryContext("sort=title"))
	require.ErrorIs(t, err, response.ErrBadRequest)
}
