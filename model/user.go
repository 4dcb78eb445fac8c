package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole int

const (
	RoleGuest UserRole = iota
	RoleUser
	RoleAdmin
)

func (r UserRole) String() string {
	switch r {
	case RoleGuest:
		return "Guest"
	case RoleUser:
		return "User"
	case RoleAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

// User stores user account information. PasswordHash must never be
// serialized outward; all response shaping goes through DTOs.
type User struct {
	ID           uint      `gorm:"primarykey"`
	Username     string    `gorm:"uniqueIndex;size:50;not null"`
	Email        string    `gorm:"uniqueIndex;size:256;not null"`
	PasswordHash string    `gorm:"size:64;not null" json:"-"`
	Role         UserRole  `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	Topics       []Topic   `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Messages     []Message `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}
