package request

import (
	"analytics/internal/api/models"
)

type CreateChart struct {
	Name   string                `json:"name" validate:"required"`
	Query  models.ChartQuerySpec `json:"query"`
	Config *models.ChartConfig   `json:"config"`
}

// UpdateChart is a partial update; nil fields are left untouched.
type UpdateChart struct {
	Name   *string                `json:"name,omitempty"`
	Query  *models.ChartQuerySpec `json:"query,omitempty"`
	Config *models.ChartConfig    `json:"config,omitempty"`
}

type Share struct {
	Username string `json:"username" validate:"required"`
}
