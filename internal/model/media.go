package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MediaType 媒体列表的类型过滤
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo
}

// Media 一个对象存储中的文件，Key 即删除时使用的引用令牌
type Media struct {
	Model
	URL               string     `gorm:"type:varchar(512);not null;uniqueIndex" json:"url"`
	Key               string     `gorm:"column:object_key;type:varchar(255);not null;uniqueIndex" json:"key"`
	MimeType          string     `gorm:"type:varchar(100);not null" json:"mime_type"`
	Size              int64      `gorm:"not null" json:"size"`
	RecordedAt        *time.Time `json:"recorded_at"`
	ProjectID         *uint      `gorm:"index" json:"project_id,omitempty"`
	ProgressHistoryID *uint      `gorm:"index" json:"progress_history_id,omitempty"`
	ReportID          *uint      `gorm:"index" json:"report_id,omitempty"`
}

func (m *Media) SetOwner(o Owner) {
	m.ProjectID, m.ProgressHistoryID, m.ReportID = nil, nil, nil
	switch o.Kind {
	case OwnerProject:
		m.ProjectID = Ptr(o.ID)
	case OwnerProgress:
		m.ProgressHistoryID = Ptr(o.ID)
	case OwnerReport:
		m.ReportID = Ptr(o.ID)
	}
}

// Owner 恰好一个外键非空时 ok 为 true
func (m *Media) Owner() (Owner, bool) {
	var owners []Owner
	if m.ProjectID != nil {
		owners = append(owners, ProjectOwner(*m.ProjectID))
	}
	if m.ProgressHistoryID != nil {
		owners = append(owners, ProgressOwner(*m.ProgressHistoryID))
	}
	if m.ReportID != nil {
		owners = append(owners, ReportOwner(*m.ReportID))
	}
	if len(owners) != 1 {
		return Owner{}, false
	}
	return owners[0], true
}

func (m *Media) Is(t MediaType) bool {
	return strings.HasPrefix(m.MimeType, string(t)+"/")
}

func (m *Media) Validate() error {
	v := &validation{}
	v.check(m.URL != "", "url", "Please provide a url")
	v.check(m.Key != "", "key", "Please provide a reference key")
	v.check(m.MimeType != "", "mime_type", "Please provide a mime type")
	v.check(m.Size >= 0, "size", "Size must be a positive integer")
	_, ok := m.Owner()
	v.check(ok, "owner", "Media must belong to exactly one project, progress history or report")
	return v.err()
}

func (m *Media) BeforeSave(*gorm.DB) error {
	return m.Validate()
}
