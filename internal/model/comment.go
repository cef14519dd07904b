package model

import (
	"strings"

	"gorm.io/gorm"
)

type Comment struct {
	Model
	Content     string        `gorm:"type:text;not null" json:"content"`
	ProjectID   uint          `gorm:"not null;index" json:"project_id"`
	CommentedBy uint          `gorm:"not null;index" json:"commented_by"`
	Commenter   *User         `gorm:"foreignKey:CommentedBy" json:"commenter,omitempty"`
	Reactions   []Reaction    `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	Reports     []Report      `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	Stats       *CommentStats `gorm:"-" json:"stats,omitempty"`
}

type CommentStats struct {
	ReactionCount int64 `json:"reaction_count"`
	ReportCount   int64 `json:"report_count"`
}

func (c *Comment) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(c.Content) != "", "content", "Please provide content")
	v.check(c.ProjectID != 0, "project_id", "Please provide a project")
	return v.err()
}

func (c *Comment) BeforeSave(*gorm.DB) error {
	return c.Validate()
}
