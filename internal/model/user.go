package model

import (
	"net/mail"
	"unicode/utf8"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleAssistantAdmin Role = "assistant_admin"
	RoleResident       Role = "resident"
	RoleBarangay       Role = "barangay"
	RoleGuest          Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAssistantAdmin, RoleResident, RoleBarangay, RoleGuest:
		return true
	}
	return false
}

type User struct {
	Model
	Username   string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	Email      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role       Role      `gorm:"type:varchar(20);not null;default:resident" json:"role"`
	BarangayID *uint     `gorm:"index" json:"barangay_id,omitempty"`
	Barangay   *Barangay `gorm:"constraint:OnDelete:SET NULL" json:"barangay,omitempty"`
}

func (u *User) Validate() error {
	v := &validation{}
	v.check(u.Username != "", "username", "Please provide a username")
	v.check(utf8.RuneCountInString(u.Username) <= 50, "username", "Username must be at most 50 characters")
	_, err := mail.ParseAddress(u.Email)
	v.check(err == nil, "email", "Please provide a valid email")
	v.check(u.Role.Valid(), "role", "Please provide a valid role")
	if u.Role == RoleBarangay {
		v.check(u.BarangayID != nil, "barangay_id", "Please provide a barangay")
	}
	return v.err()
}

func (u *User) BeforeSave(*gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleResident
	}
	return u.Validate()
}
