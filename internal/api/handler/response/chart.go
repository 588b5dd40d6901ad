package response

import (
	"time"

	"analytics/internal/api/models"
	"analytics/internal/chartquery"
)

type Chart struct {
	ID         uint                  `json:"id"`
	Name       string                `json:"name"`
	DatasetID  uint                  `json:"dataset_id"`
	Query      models.ChartQuerySpec `json:"query"`
	Config     models.ChartConfig    `json:"config"`
	Owner      string                `json:"owner"`
	SharedWith []string              `json:"shared_with"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

type ChartCreated struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	SchemaName string `json:"schema_name"`
	Message    string `json:"message"`
}

type ChartWithData struct {
	Chart Chart               `json:"chart"`
	Data  chartquery.Response `json:"data"`
}
