package mapper

import (
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
)

type DashboardMapper interface {
	ToDashboardResponse(d models.Dashboard) response.Dashboard
	ToDashboardResponses(dashboards []models.Dashboard) []response.Dashboard
	ToCommentResponses(comments []models.Comment) []response.Comment
	ToCommentResponse(c models.Comment) response.Comment
}

type DashboardMapperImpl struct{}

func NewDashboardMapper() DashboardMapper {
	return &DashboardMapperImpl{}
}

func (m *DashboardMapperImpl) ToDashboardResponse(d models.Dashboard) response.Dashboard {
	shared := d.SharedWith
	if shared == nil {
		shared = []string{}
	}
	layout := d.Layout
	if layout == nil {
		layout = models.DashboardLayout{}
	}
	return response.Dashboard{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Owner:       d.Owner,
		Layout:      layout,
		SharedWith:  shared,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (m *DashboardMapperImpl) ToDashboardResponses(dashboards []models.Dashboard) []response.Dashboard {
	result := make([]response.Dashboard, len(dashboards))
	for i, d := range dashboards {
		result[i] = m.ToDashboardResponse(d)
	}
	return result
}

func (m *DashboardMapperImpl) ToCommentResponse(c models.Comment) response.Comment {
	return response.Comment{
		ID:        c.ID,
		Username:  c.Username,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (m *DashboardMapperImpl) ToCommentResponses(comments []models.Comment) []response.Comment {
	result := make([]response.Comment, len(comments))
	for i, c := range comments {
		result[i] = m.ToCommentResponse(c)
	}
	return result
}
