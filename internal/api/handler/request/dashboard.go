package request

import (
	"analytics/internal/api/models"
)

type CreateDashboard struct {
	Title       string                 `json:"title" validate:"required"`
	Description *string                `json:"description"`
	Layout      models.DashboardLayout `json:"layout"`
}

type UpdateDashboard struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Layout      *models.DashboardLayout `json:"layout,omitempty"`
}

type CreateComment struct {
	Content string `json:"content" validate:"required"`
}
