package model

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

type Barangay struct {
	Model
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

func (b *Barangay) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(b.Name) != "", "name", "Please provide a name")
	v.check(utf8.RuneCountInString(b.Name) <= 50, "name", "Name must be at most 50 characters")
	return v.err()
}

func (b *Barangay) BeforeSave(*gorm.DB) error {
	return b.Validate()
}

type FundingSource struct {
	Model
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

func (f *FundingSource) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(f.Name) != "", "name", "Please provide a name")
	return v.err()
}

func (f *FundingSource) BeforeSave(*gorm.DB) error {
	return f.Validate()
}

// Tag 固定的项目分类
type Tag struct {
	Model
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

var TagNames = []string{
	"Administration And Governance",
	"General Public Services",
	"Health",
	"Education",
	"Livelihood",
	"Infrastructure",
	"Environmental Management",
	"Sports And Recreation",
	"Others",
}

func IsTagName(name string) bool {
	for _, n := range TagNames {
		if n == name {
			return true
		}
	}
	return false
}

type Announcement struct {
	Model
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	CreatedBy uint   `gorm:"not null;index" json:"created_by"`
}

func (a *Announcement) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(a.Title) != "", "title", "Please provide a title")
	v.check(strings.TrimSpace(a.Content) != "", "content", "Please provide content")
	return v.err()
}

func (a *Announcement) BeforeSave(*gorm.DB) error {
	return a.Validate()
}

type Contact struct {
	Model
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Logo    string `gorm:"type:varchar(512)" json:"logo"`
	Address string `gorm:"type:varchar(255)" json:"address"`
	Emails  string `gorm:"type:text" json:"emails"`
	Phones  string `gorm:"type:text" json:"phones"`
}

func (c *Contact) Validate() error {
	v := &validation{}
	v.check(strings.TrimSpace(c.Name) != "", "name", "Please provide a name")
	return v.err()
}

func (c *Contact) BeforeSave(*gorm.DB) error {
	return c.Validate()
}
