package model

import (
	"time"
)

type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Model) GetID() uint {
	return m.ID
}

func (m *Model) SetID(id uint) {
	m.ID = id
}

// Stamp 维护时间戳，供不经过 gorm 的存储实现使用
func (m *Model) Stamp(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

func (m *Model) CreateTime() int64 {
	return m.CreatedAt.UnixMilli()
}

func (m *Model) UpdateTime() int64 {
	return m.UpdatedAt.UnixMilli()
}

// Ptr 返回值的指针，便于给可空外键赋值
func Ptr[T any](v T) *T {
	return &v
}
