package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressHistory 项目进度记录，同一项目下进度值唯一
type ProgressHistory struct {
	Model
	ProjectID uint           `gorm:"not null;uniqueIndex:idx_project_progress" json:"project_id"`
	Progress  int            `gorm:"not null;uniqueIndex:idx_project_progress" json:"progress"`
	Date      datatypes.Date `gorm:"not null" json:"date"`
	Remarks   string         `gorm:"type:text" json:"remarks"`
	CreatedBy uint           `gorm:"not null;index" json:"created_by"`
	Media     []Media        `gorm:"foreignKey:ProgressHistoryID;constraint:OnDelete:CASCADE" json:"media"`
}

func (h *ProgressHistory) Time() time.Time {
	return time.Time(h.Date)
}

func (h *ProgressHistory) Validate() error {
	v := &validation{}
	v.check(h.ProjectID != 0, "project_id", "Please provide a project")
	v.check(h.Progress >= 0 && h.Progress <= 100, "progress", "Progress must be between 0 and 100")
	v.check(!h.Time().IsZero(), "date", "Please provide a valid date")
	return v.err()
}

func (h *ProgressHistory) BeforeSave(*gorm.DB) error {
	return h.Validate()
}
