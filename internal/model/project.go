package model

import (
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	StatusPlanned   ProjectStatus = "planned"
	StatusOngoing   ProjectStatus = "ongoing"
	StatusOnHold    ProjectStatus = "on_hold"
	StatusCompleted ProjectStatus = "completed"
	StatusCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusOngoing, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Project struct {
	Model
	Title              string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"title"`
	Description        string            `gorm:"type:text" json:"description"`
	Cost               float64           `gorm:"type:decimal(15,2);not null;default:0" json:"cost"`
	StartDate          *time.Time        `json:"start_date"`
	DueDate            *time.Time        `json:"due_date"`
	CompletionDate     *time.Time        `json:"completion_date"`
	Status             ProjectStatus     `gorm:"type:varchar(20);not null;default:planned" json:"status"`
	Progress           int               `gorm:"not null;default:0" json:"progress"`
	ImplementingAgency string            `gorm:"type:varchar(100)" json:"implementing_agency"`
	ContractTerm       string            `gorm:"type:varchar(100)" json:"contract_term"`
	Contractor         string            `gorm:"type:varchar(100)" json:"contractor"`
	FundingSourceID    *uint             `json:"funding_source_id"`
	FundingSource      *FundingSource    `gorm:"constraint:OnDelete:SET NULL" json:"funding_source,omitempty"`
	CreatedBy          uint              `gorm:"not null;index" json:"created_by"`
	Tags               []Tag             `gorm:"many2many:project_tag;constraint:OnDelete:CASCADE" json:"tags"`
	Barangays          []Barangay        `gorm:"many2many:project_barangay;constraint:OnDelete:CASCADE" json:"barangays"`
	Media              []Media           `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"media"`
	ProgressHistories  []ProgressHistory `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Comments           []Comment         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Reactions          []Reaction        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Reports            []Report          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Stats              *ProjectStats     `gorm:"-" json:"stats,omitempty"`
}

// ProjectStats 列表接口附带的统计
type ProjectStats struct {
	CommentCount int64 `json:"comment_count"`
	Likes        int64 `json:"likes"`
	Dislikes     int64 `json:"dislikes"`
}

// SyncStatus 进度到 100 即完成；离开完成状态时清空完成日期；状态为空时取 planned
func (p *Project) SyncStatus() {
	if p.Status == "" {
		p.Status = StatusPlanned
	}
	if p.Progress == 100 {
		p.Status = StatusCompleted
	}
	if p.Status != StatusCompleted {
		p.CompletionDate = nil
	}
}

// ApplyProgress 把一条进度记录写回项目的派生字段
func (p *Project) ApplyProgress(progress int, date time.Time) {
	p.Progress = progress
	if progress == 100 {
		p.Status = StatusCompleted
		p.CompletionDate = &date
		return
	}
	p.Status = StatusOngoing
	p.CompletionDate = nil
}

func (p *Project) Validate() error {
	v := &validation{}
	v.check(p.Title != "", "title", "Please provide a title")
	v.check(utf8.RuneCountInString(p.Title) <= 50, "title", "Title must be at most 50 characters")
	v.check(p.Cost >= 0, "cost", "Cost must be a positive number")
	v.check(p.Status.Valid(), "status", "Please provide a valid status")
	v.check(p.Progress >= 0 && p.Progress <= 100, "progress", "Progress must be between 0 and 100")
	if p.StartDate != nil && p.DueDate != nil {
		v.check(p.StartDate.Before(*p.DueDate), "due_date", "Due date must be after the start date")
	}
	if p.StartDate != nil && p.CompletionDate != nil {
		v.check(!p.CompletionDate.Before(*p.StartDate), "completion_date", "Completion date must not be before the start date")
	}
	return v.err()
}

func (p *Project) BeforeSave(*gorm.DB) error {
	p.SyncStatus()
	return p.Validate()
}
