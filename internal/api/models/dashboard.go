package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

type Dashboard struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description *string         `json:"description,omitempty"`
	Owner       string          `gorm:"not null;index;size:100" json:"owner"`
	Layout      DashboardLayout `gorm:"type:text;not null" json:"layout"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	SharedWith []string `gorm:"-" json:"shared_with"`
}

func (Dashboard) TableName() string {
	return "dashboards"
}

func (d Dashboard) CanView(username string) bool {
	if d.Owner == username {
		return true
	}
	for _, u := range d.SharedWith {
		if u == username {
			return true
		}
	}
	return false
}

type LayoutItemType string

const (
	LayoutChart LayoutItemType = "chart"
	LayoutTitle LayoutItemType = "title"
	LayoutText  LayoutItemType = "text"
)

// LayoutItem is one grid cell. I is "<type>_<n>", e.g. chart_3.
type LayoutItem struct {
	I       string         `json:"i"`
	X       int            `json:"x"`
	Y       int            `json:"y"`
	W       int            `json:"w"`
	H       int            `json:"h"`
	Type    LayoutItemType `json:"type"`
	Content LayoutContent  `json:"content"`
}

type LayoutContent struct {
	ChartID *uint          `json:"chart_id,omitempty"`
	Text    *string        `json:"text,omitempty"`
	Style   map[string]any `json:"style,omitempty"`
}

type DashboardLayout []LayoutItem

// ChartIDs lists the chart ids referenced by chart items, in layout order.
func (l DashboardLayout) ChartIDs() []uint {
	var ids []uint
	for _, item := range l {
		if item.Type == LayoutChart && item.Content.ChartID != nil {
			ids = append(ids, *item.Content.ChartID)
		}
	}
	return ids
}

func (l DashboardLayout) Value() (driver.Value, error) {
	if l == nil {
		l = DashboardLayout{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *DashboardLayout) Scan(value interface{}) error {
	return scanJSON(value, l, "DashboardLayout")
}
