package model

import (
	"time"

	"gorm.io/gorm"
)

type Topic struct {
	ID          uint      `gorm:"primarykey"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:1000"`
	AuthorID    uint      `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	Author      User      `gorm:"foreignKey:AuthorID;references:ID"`
	Messages    []Message `gorm:"foreignKey:TopicID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = GenerateID()
	}
	return nil
}
