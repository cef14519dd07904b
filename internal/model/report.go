package model

import (
	"strings"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
	ReportRejected ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportResolved, ReportRejected:
		return true
	}
	return false
}

// Report 针对项目或评论的举报
type Report struct {
	Model
	Content    string       `gorm:"type:text;not null" json:"content"`
	Status     ReportStatus `gorm:"type:varchar(10);not null;default:pending" json:"status"`
	ReportedBy uint         `gorm:"not null;index" json:"reported_by"`
	ProjectID  *uint        `gorm:"index" json:"project_id,omitempty"`
	CommentID  *uint        `gorm:"index" json:"comment_id,omitempty"`
	Media      []Media      `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"media"`
}

func (r *Report) SetTarget(t Target) {
	r.ProjectID, r.CommentID = t.columns()
}

func (r *Report) Target() (Target, bool) {
	return targetOf(r.ProjectID, r.CommentID)
}

func (r *Report) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(r.Content) != "", "content", "Please provide content")
	v.check(r.Status.Valid(), "status", "Please provide a valid status")
	_, ok := r.Target()
	v.check(ok, "target", "Report must target exactly one project or comment")
	return v.err()
}

func (r *Report) BeforeSave(*gorm.DB) error {
	if r.Status == "" {
		r.Status = ReportPending
	}
	return r.Validate()
}
