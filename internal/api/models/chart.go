package models

import (
	"time"
)

// Chart is a saved, shareable chart definition.
type Chart struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	DatasetID uint           `gorm:"not null;index" json:"dataset_id"`
	Dataset   *Dataset       `gorm:"foreignKey:DatasetID;constraint:OnDelete:RESTRICT" json:"-"`
	Query     ChartQuerySpec `gorm:"type:text;not null" json:"query"`
	Config    ChartConfig    `gorm:"type:text;not null" json:"config"`
	Owner     string         `gorm:"not null;index;size:100" json:"owner"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Filled from the shares table, never stored on the chart row.
	SharedWith []string `gorm:"-" json:"shared_with"`
}

func (Chart) TableName() string {
	return "charts"
}

// CanView reports whether username owns the chart or appears on its access list.
func (c Chart) CanView(username string) bool {
	if c.Owner == username {
		return true
	}
	for _, u := range c.SharedWith {
		if u == username {
			return true
		}
	}
	return false
}
