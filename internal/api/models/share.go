package models

import (
	"time"
)

type ResourceType string

const (
	ResourceChart     ResourceType = "chart"
	ResourceDashboard ResourceType = "dashboard"
)

// Share grants SharedWith read access to a chart or dashboard.
type Share struct {
	ID           uint         `gorm:"primaryKey"`
	ResourceType ResourceType `gorm:"not null;size:20;uniqueIndex:idx_share_target"`
	ResourceID   uint         `gorm:"not null;uniqueIndex:idx_share_target"`
	SharedWith   string       `gorm:"not null;size:100;uniqueIndex:idx_share_target"`
	CreatedAt    time.Time
}

func (Share) TableName() string {
	return "shares"
}
