package model

import "fmt"

// TargetKind 反应与举报的目标类型
type TargetKind string

const (
	TargetProject TargetKind = "project"
	TargetComment TargetKind = "comment"
)

func (k TargetKind) Valid() bool {
	return k == TargetProject || k == TargetComment
}

// Target 反应或举报指向的实体，Project 或 Comment 二选一
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uint       `json:"id"`
}

func ProjectTarget(id uint) Target {
	return Target{Kind: TargetProject, ID: id}
}

func CommentTarget(id uint) Target {
	return Target{Kind: TargetComment, ID: id}
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// columns 将 Target 展开为两个可空外键
func (t Target) columns() (projectID, commentID *uint) {
	switch t.Kind {
	case TargetProject:
		return Ptr(t.ID), nil
	case TargetComment:
		return nil, Ptr(t.ID)
	}
	return nil, nil
}

// targetOf 从两个可空外键还原 Target，恰好一个非空时 ok 为 true
func targetOf(projectID, commentID *uint) (Target, bool) {
	switch {
	case projectID != nil && commentID == nil:
		return ProjectTarget(*projectID), true
	case projectID == nil && commentID != nil:
		return CommentTarget(*commentID), true
	}
	return Target{}, false
}

// OwnerKind 媒体的所属实体类型
type OwnerKind string

const (
	OwnerProject  OwnerKind = "project"
	OwnerProgress OwnerKind = "progress_history"
	OwnerReport   OwnerKind = "report"
)

// Owner 媒体所属实体，三者之一
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   uint      `json:"id"`
}

func ProjectOwner(id uint) Owner {
	return Owner{Kind: OwnerProject, ID: id}
}

func ProgressOwner(id uint) Owner {
	return Owner{Kind: OwnerProgress, ID: id}
}

func ReportOwner(id uint) Owner {
	return Owner{Kind: OwnerReport, ID: id}
}

func (o Owner) String() string {
	return fmt.Sprintf("%s:%d", o.Kind, o.ID)
}
