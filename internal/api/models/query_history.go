package models

import (
	"time"
)

// QueryHistory records one natural-language question and what it produced.
type QueryHistory struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Username      string    `gorm:"not null;index;size:100" json:"username"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	Explanation   string    `gorm:"type:text" json:"explanation"`
	SQLQuery      string    `gorm:"column:sql_query;type:text" json:"sql_query"`
	Data          string    `gorm:"type:text" json:"data"`
	ChartType     string    `gorm:"size:50" json:"chart_type"`
	ChartFig      string    `gorm:"type:text" json:"chart_fig"`
	ChartTitle    string    `json:"chart_title"`
	ExecutionTime float64   `json:"execution_time"`
}

func (QueryHistory) TableName() string {
	return "query_history"
}
