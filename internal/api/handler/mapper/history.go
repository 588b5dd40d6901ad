package mapper

import (
	"encoding/json"

	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
)

type HistoryMapper interface {
	ToHistoryResponses(entries []models.QueryHistory) []response.HistoryEntry
}

type HistoryMapperImpl struct{}

func NewHistoryMapper() HistoryMapper {
	return &HistoryMapperImpl{}
}

func (m *HistoryMapperImpl) ToHistoryResponses(entries []models.QueryHistory) []response.HistoryEntry {
	result := make([]response.HistoryEntry, len(entries))
	for i, e := range entries {
		result[i] = response.HistoryEntry{
			ID:            e.ID,
			Timestamp:     e.Timestamp,
			Question:      e.Question,
			Explanation:   e.Explanation,
			SQLQuery:      e.SQLQuery,
			Data:          rawJSON(e.Data),
			ChartType:     e.ChartType,
			ChartFig:      rawJSON(e.ChartFig),
			ChartTitle:    e.ChartTitle,
			ExecutionTime: e.ExecutionTime,
		}
	}
	return result
}

// rawJSON passes stored JSON through untouched; empty or corrupt text becomes null.
func rawJSON(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
