package model

import "gorm.io/gorm"

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Reaction 每个用户对每个目标至多一条，由两个唯一索引兜底
type Reaction struct {
	Model
	ReactionType ReactionType `gorm:"type:varchar(10);not null" json:"reaction_type"`
	ReactedBy    uint         `gorm:"not null;uniqueIndex:idx_reactor_project;uniqueIndex:idx_reactor_comment" json:"reacted_by"`
	ProjectID    *uint        `gorm:"uniqueIndex:idx_reactor_project" json:"project_id,omitempty"`
	CommentID    *uint        `gorm:"uniqueIndex:idx_reactor_comment" json:"comment_id,omitempty"`
}

func (r *Reaction) SetTarget(t Target) {
	r.ProjectID, r.CommentID = t.columns()
}

func (r *Reaction) Target() (Target, bool) {
	return targetOf(r.ProjectID, r.CommentID)
}

func (r *Reaction) Validate() error {
	v := &validation{}
	v.check(r.ReactionType.Valid(), "reaction_type", "Please provide a valid reaction type")
	v.check(r.ReactedBy != 0, "reacted_by", "Please provide a user")
	_, ok := r.Target()
	v.check(ok, "target", "Reaction must target exactly one project or comment")
	return v.err()
}

func (r *Reaction) BeforeSave(*gorm.DB) error {
	return r.Validate()
}

// ReactionCounts 按类型分组的计数
type ReactionCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}
