package store

import (
	"math"

	"civic-project-system/internal/model"
)

// Page Limit 为 0 表示不分页
type Page struct {
	Page  int
	Limit int
}

func (p Page) Enabled() bool {
	return p.Limit > 0
}

// Offset 溢出时取 math.MaxInt，结果为空页
func (p Page) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Slice 对内存中的结果分页
func Slice[T any](rows []T, p Page) []T {
	if !p.Enabled() {
		return rows
	}
	start := p.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if p.Limit < end-start {
		end = start + p.Limit
	}
	return rows[start:end]
}

type ProjectQuery struct {
	Search     string
	Status     model.ProjectStatus
	BarangayID uint
	Page
}

type ProgressQuery struct {
	Oldest bool
	Page
}

type MediaQuery struct {
	Owner model.Owner
	Type  model.MediaType
	Page
}

type ReactionQuery struct {
	Type   model.ReactionType
	Kind   model.TargetKind
	Target *model.Target
	Desc   bool
	Page
}

// CommentQuery ProjectID 为 0 时列出全部评论
type CommentQuery struct {
	ProjectID uint
	Page
}

type ReportQuery struct {
	Search string
	Status model.ReportStatus
	Kind   model.TargetKind
	Desc   bool
	Page
}
