package mapper

import (
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
)

type ChartMapper interface {
	ToChartResponse(c models.Chart) response.Chart
	ToChartResponses(charts []models.Chart) []response.Chart
}

type ChartMapperImpl struct{}

func NewChartMapper() ChartMapper {
	return &ChartMapperImpl{}
}

func (m *ChartMapperImpl) ToChartResponse(c models.Chart) response.Chart {
	shared := c.SharedWith
	if shared == nil {
		shared = []string{}
	}
	return response.Chart{
		ID:         c.ID,
		Name:       c.Name,
		DatasetID:  c.DatasetID,
		Query:      c.Query,
		Config:     c.Config,
		Owner:      c.Owner,
		SharedWith: shared,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (m *ChartMapperImpl) ToChartResponses(charts []models.Chart) []response.Chart {
	result := make([]response.Chart, len(charts))
	for i, c := range charts {
		result[i] = m.ToChartResponse(c)
	}
	return result
}
