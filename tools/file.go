package tools

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Attachment 设置下载响应头，文件名按 RFC 5987 编码
func Attachment(c *gin.Context, displayName, contentType string) {
	escaped := url.QueryEscape(displayName)
	c.Header("Content-Type", contentType)
	c.Header(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, escaped, escaped),
	)
}

// SendExcel 把工作簿直接写入响应
func SendExcel(c *gin.Context, f *excelize.File, displayName string) error {
	defer f.Close()
	Attachment(c, displayName, ExcelContentType)
	c.Status(http.StatusOK)
	_, err := f.WriteTo(c.Writer)
	return err
}
