package service

import (
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/chartquery"
	"analytics/internal/domain"

	"github.com/rs/zerolog"
)

type DatasetService struct {
	datasetRepo *repo.DatasetRepository
	logger      zerolog.Logger
}

func NewDatasetService(datasetRepo *repo.DatasetRepository, logger zerolog.Logger) *DatasetService {
	return &DatasetService{datasetRepo: datasetRepo, logger: logger}
}

// Resolve maps a dataset id to its physical location.
func (slf *DatasetService) Resolve(id uint) (models.Dataset, error) {
	dataset, err := slf.datasetRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return models.Dataset{}, domain.ErrNotFound("dataset %d not found", id)
		}
		slf.logger.Error().Err(err).Uint("datasetId", id).Msg("Failed to resolve dataset")
		return models.Dataset{}, catalogError("resolve dataset", err)
	}
	return dataset, nil
}

func (slf *DatasetService) FindAll() ([]models.Dataset, error) {
	datasets, err := slf.datasetRepo.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list datasets")
		return nil, catalogError("list datasets", err)
	}
	return datasets, nil
}

func (slf *DatasetService) Create(dataset models.Dataset) (*models.Dataset, error) {
	fields := [][2]string{
		{"database", dataset.Database},
		{"schema_name", dataset.SchemaName},
		{"table_name", dataset.Table},
	}
	for _, f := range fields {
		if !chartquery.IsIdentifier(f[1]) {
			return nil, domain.ErrValidation("invalid %s: %q", f[0], f[1])
		}
	}

	if err := slf.datasetRepo.Create(&dataset); err != nil {
		slf.logger.Error().Err(err).Str("table", dataset.QualifiedName()).Msg("Failed to create dataset")
		return nil, catalogError("create dataset", err)
	}
	slf.logger.Info().Uint("datasetId", dataset.ID).Str("table", dataset.QualifiedName()).Msg("Dataset created")
	return &dataset, nil
}

// Delete refuses to remove a dataset that charts still reference.
func (slf *DatasetService) Delete(id uint) error {
	if _, err := slf.Resolve(id); err != nil {
		return err
	}
	count, err := slf.datasetRepo.CountCharts(id)
	if err != nil {
		slf.logger.Error().Err(err).Uint("datasetId", id).Msg("Failed to count dataset charts")
		return catalogError("delete dataset", err)
	}
	if count > 0 {
		return domain.ErrConflict("dataset %d is used by %d chart(s)", id, count)
	}

	deleted, err := slf.datasetRepo.Delete(id)
	if err != nil {
		slf.logger.Error().Err(err).Uint("datasetId", id).Msg("Failed to delete dataset")
		return catalogError("delete dataset", err)
	}
	if !deleted {
		return domain.ErrNotFound("dataset %d not found", id)
	}
	return nil
}
