// Package request 解析路径参数、分页排序与上传文件
package request

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"civic-project-system/internal/global/jwt"
	"civic-project-system/internal/global/response"
	"civic-project-system/internal/service/media"
	"civic-project-system/internal/service/permission"
	"civic-project-system/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit 只给了 page 时的每页条数
	DefaultLimit = 10
	MaxLimit     = 100

	sortAsc  = "createdAt"
	sortDesc = "-createdAt"

	refField = "media"
)

// fileFields 接受的文件字段名
var fileFields = []string{"media[]", "media", "files[]"}

// Actor 未登录时返回零值，权限检查会拒绝它
func Actor(c *gin.Context) permission.Actor {
	claims, ok := jwt.GetUserPayload(c)
	if !ok {
		return permission.Actor{}
	}
	return permission.Actor{ID: claims.UserID, Role: claims.Role}
}

func ID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest.WithMessage("Invalid id")
	}
	return uint(id), nil
}

// Page page 与 limit 都未给出时不分页
func Page(c *gin.Context) (store.Page, error) {
	rawPage, hasPage := c.GetQuery("page")
	rawLimit, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return store.Page{}, nil
	}
	p := store.Page{Page: 1, Limit: DefaultLimit}
	var err error
	if hasPage {
		if p.Page, err = strconv.Atoi(rawPage); err != nil || p.Page < 1 {
			return store.Page{}, response.ErrBadRequest.WithMessage("Invalid page or limit")
		}
	}
	if hasLimit {
		if p.Limit, err = strconv.Atoi(rawLimit); err != nil || p.Limit < 1 || p.Limit > MaxLimit {
			return store.Page{}, response.ErrBadRequest.WithMessage("Invalid page or limit")
		}
	}
	// 偏移量必须能用 int 表示
	if p.Page > math.MaxInt/p.Limit {
		return store.Page{}, response.ErrBadRequest.WithMessage("Invalid page or limit")
	}
	return p, nil
}

// Desc 默认按创建时间倒序
func Desc(c *gin.Context) (bool, error) {
	switch c.Query("sort") {
	case "", sortDesc:
		return true, nil
	case sortAsc:
		return false, nil
	}
	return false, response.ErrBadRequest.WithMessage("Invalid sort column")
}

// Files 收集 multipart 的 media[] 文件与引用。
// JSON 请求体里的引用由调用方绑定后传入；multipart 时引用放在 media 字段里，值为 JSON 数组
func Files(c *gin.Context, refs []media.Ref) (media.Files, error) {
	files := media.Files{Refs: refs}
	if !strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		return files, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return files, nil
		}
		return files, response.ErrBadRequest.WithMessage("Invalid multipart form").WithOrigin(err)
	}
	for _, field := range fileFields {
		files.Sources = append(files.Sources, media.FromMultipart(form.File[field])...)
	}
	for _, raw := range form.Value[refField] {
		var more []media.Ref
		if err := json.Unmarshal([]byte(raw), &more); err != nil {
			return files, response.ErrBadRequest.WithMessage("Invalid media references").WithOrigin(err)
		}
		files.Refs = append(files.Refs, more...)
	}
	return files, nil
}

// Provided multipart 中是否带了任何媒体字段，用于区分“不修改媒体”与“清空媒体”
func Provided(c *gin.Context, refs []media.Ref) bool {
	if refs != nil {
		return true
	}
	form, err := c.MultipartForm()
	if err != nil {
		return false
	}
	for _, field := range fileFields {
		if _, ok := form.File[field]; ok {
			return true
		}
	}
	_, hasRefs := form.Value[refField]
	return hasRefs
}
