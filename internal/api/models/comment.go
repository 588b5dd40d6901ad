package models

import (
	"time"
)

type Comment struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ResourceType ResourceType `gorm:"not null;size:20;index:idx_comment_target" json:"resource_type"`
	ResourceID   uint         `gorm:"not null;index:idx_comment_target" json:"resource_id"`
	Username     string       `gorm:"not null;size:100" json:"username"`
	Content      string       `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}
