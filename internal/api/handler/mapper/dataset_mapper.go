package mapper

import (
	"strings"

	"analytics/internal/api/handler/request"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
)

// DatasetMapper handles mapping between dataset models and DTOs
type DatasetMapper interface {
	ToDataset(req request.CreateDataset) models.Dataset
	ToDatasetResponse(d models.Dataset) response.Dataset
	ToDatasetResponses(datasets []models.Dataset) []response.Dataset
}

type DatasetMapperImpl struct{}

func NewDatasetMapper() DatasetMapper {
	return &DatasetMapperImpl{}
}

func (m *DatasetMapperImpl) ToDataset(req request.CreateDataset) models.Dataset {
	return models.Dataset{
		Database:   strings.TrimSpace(req.Database),
		SchemaName: strings.TrimSpace(req.SchemaName),
		Table:      strings.TrimSpace(req.TableName),
	}
}

func (m *DatasetMapperImpl) ToDatasetResponse(d models.Dataset) response.Dataset {
	return response.Dataset{
		ID:         d.ID,
		Database:   d.Database,
		SchemaName: d.SchemaName,
		TableName:  d.Table,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *DatasetMapperImpl) ToDatasetResponses(datasets []models.Dataset) []response.Dataset {
	result := make([]response.Dataset, len(datasets))
	for i, d := range datasets {
		result[i] = m.ToDatasetResponse(d)
	}
	return result
}
