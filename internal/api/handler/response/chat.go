package response

import (
	"encoding/json"
	"time"

	"analytics/internal/render"
)

type ChatAnswer struct {
	ID                 string           `json:"id,omitempty"`
	SQLQuery           string           `json:"sql_query"`
	Explanation        string           `json:"explanation"`
	ChartTitle         string           `json:"chart_title"`
	SuggestedChartType string           `json:"suggested_chart_type"`
	Recommendation     []string         `json:"recommendation"`
	Data               []map[string]any `json:"data"`
	Chart              *render.Figure   `json:"chart"`
}

type HistoryEntry struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Question      string          `json:"question"`
	Explanation   string          `json:"explanation"`
	SQLQuery      string          `json:"sql_query"`
	Data          json.RawMessage `json:"data"`
	ChartType     string          `json:"chart_type"`
	ChartFig      json.RawMessage `json:"chart_fig"`
	ChartTitle    string          `json:"chart_title"`
	ExecutionTime float64         `json:"execution_time"`
}
