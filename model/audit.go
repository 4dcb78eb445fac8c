package model

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog is an append-only record of one user action. Entries are never
// updated or deleted; users with audit entries cannot be removed (RESTRICT).
type AuditLog struct {
	ID         uint      `gorm:"primarykey"`
	UserID     uint      `gorm:"index;not null"`
	Action     string    `gorm:"size:100;not null"` // "Login", "POST /api/topics/5", ...
	EntityType string    `gorm:"size:50"`           // optional, set by semantic calls
	EntityID   *uint     // optional target entity
	Timestamp  time.Time `gorm:"index;not null"`
	Details    string    `gorm:"size:500"`
	User       User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == 0 {
		a.ID = GenerateID()
	}
	return nil
}

func (AuditLog) TableName() string {
	return "audit_log"
}
