package model

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID        uint       `gorm:"primarykey"`
	TopicID   uint       `gorm:"index;not null"`
	AuthorID  uint       `gorm:"index;not null"`
	Text      string     `gorm:"size:5000;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"` // nil until the message is edited
	Author    User       `gorm:"foreignKey:AuthorID;references:ID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = GenerateID()
	}
	return nil
}
