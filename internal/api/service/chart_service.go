package service

import (
	"context"
	"strings"

	"analytics/internal/api/handler/request"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/chartquery"
	"analytics/internal/domain"

	"github.com/rs/zerolog"
)

type ChartService struct {
	chartRepo *repo.ChartRepository
	shareRepo *repo.ShareRepository
	datasets  *DatasetService
	queries   *ChartQueryService
	logger    zerolog.Logger
}

func NewChartService(chartRepo *repo.ChartRepository, shareRepo *repo.ShareRepository, datasets *DatasetService, queries *ChartQueryService, logger zerolog.Logger) *ChartService {
	return &ChartService{
		chartRepo: chartRepo,
		shareRepo: shareRepo,
		datasets:  datasets,
		queries:   queries,
		logger:    logger,
	}
}

// Create stores a chart owned by username. The dataset is checked in a prior
// read so an unknown id never reaches the insert.
func (slf *ChartService) Create(username string, req request.CreateChart) (*models.Chart, *models.Dataset, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, domain.ErrValidation("name must not be empty")
	}

	dataset, err := slf.datasets.Resolve(req.Query.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	query := req.Query
	query.Normalize()
	if _, err := chartquery.Validate(query); err != nil {
		return nil, nil, err
	}

	config := models.DefaultChartConfig()
	if req.Config != nil {
		config = *req.Config
	}
	if err := config.Validate(); err != nil {
		return nil, nil, domain.ErrValidation("invalid config: %s", err.Error())
	}

	chart := models.Chart{
		Name:      name,
		DatasetID: dataset.ID,
		Query:     query,
		Config:    config,
		Owner:     username,
	}
	if err := slf.chartRepo.Create(&chart); err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to create chart")
		return nil, nil, catalogError("create chart", err)
	}
	chart.SharedWith = []string{}

	slf.logger.Info().Uint("chartId", chart.ID).Str("username", username).Msg("Chart created")
	return &chart, &dataset, nil
}

func (slf *ChartService) find(id uint) (models.Chart, error) {
	chart, err := slf.chartRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return models.Chart{}, domain.ErrNotFound("chart %d not found", id)
		}
		slf.logger.Error().Err(err).Uint("chartId", id).Msg("Failed to load chart")
		return models.Chart{}, catalogError("load chart", err)
	}
	return chart, nil
}

func (slf *ChartService) findOwned(username string, id uint) (models.Chart, error) {
	chart, err := slf.find(id)
	if err != nil {
		return chart, err
	}
	if chart.Owner != username {
		return chart, domain.ErrPermissionDenied("only the owner can modify chart %d", id)
	}
	return chart, nil
}

// Update applies the non-nil fields of req. Owner only.
func (slf *ChartService) Update(username string, id uint, req request.UpdateChart) (*models.Chart, error) {
	chart, err := slf.findOwned(username, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrValidation("name must not be empty")
		}
		chart.Name = name
	}
	if req.Query != nil {
		query := *req.Query
		query.Normalize()
		if query.DatasetID != chart.DatasetID {
			if _, err := slf.datasets.Resolve(query.DatasetID); err != nil {
				return nil, err
			}
		}
		if _, err := chartquery.Validate(query); err != nil {
			return nil, err
		}
		chart.Query = query
		chart.DatasetID = query.DatasetID
	}
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			return nil, domain.ErrValidation("invalid config: %s", err.Error())
		}
		chart.Config = *req.Config
	}

	if err := slf.chartRepo.Update(&chart); err != nil {
		slf.logger.Error().Err(err).Uint("chartId", id).Msg("Failed to update chart")
		return nil, catalogError("update chart", err)
	}
	return &chart, nil
}

func (slf *ChartService) Delete(username string, id uint) error {
	if _, err := slf.findOwned(username, id); err != nil {
		return err
	}
	if err := slf.chartRepo.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("chartId", id).Msg("Failed to delete chart")
		return catalogError("delete chart", err)
	}
	slf.logger.Info().Uint("chartId", id).Str("username", username).Msg("Chart deleted")
	return nil
}

// ListVisible returns the charts username owns or was granted.
func (slf *ChartService) ListVisible(username string) ([]models.Chart, error) {
	charts, err := slf.chartRepo.FindVisibleTo(username)
	if err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to list charts")
		return nil, catalogError("list charts", err)
	}
	return charts, nil
}

// Get returns the chart and its freshly executed data. The stored config's
// limit and sort order take precedence over the stored query's.
func (slf *ChartService) Get(ctx context.Context, username string, id uint) (*models.Chart, *chartquery.Response, error) {
	chart, err := slf.find(id)
	if err != nil {
		return nil, nil, err
	}
	if !chart.CanView(username) {
		return nil, nil, domain.ErrPermissionDenied("you do not have access to chart %d", id)
	}

	data, err := slf.queries.Execute(ctx, username, EffectiveQuery(chart))
	if err != nil {
		return nil, nil, err
	}
	return &chart, data, nil
}

// EffectiveQuery is the stored query with the chart config's limit and sort
// order applied, then the endpoint defaults.
func EffectiveQuery(chart models.Chart) models.ChartQuerySpec {
	query := chart.Query
	query.Normalize()
	if chart.Config.Limit > 0 {
		limit := chart.Config.Limit
		query.Limit = &limit
	}
	if chart.Config.SortOrder != "" {
		order := strings.ToLower(chart.Config.SortOrder)
		query.SortOrder = &order
	}
	query.ApplyDefaults()
	return query
}

// RunAdHoc executes a spec that is not stored as a chart.
func (slf *ChartService) RunAdHoc(ctx context.Context, username string, spec models.ChartQuerySpec) (*chartquery.Response, error) {
	spec.Normalize()
	spec.ApplyDefaults()
	return slf.queries.Execute(ctx, username, spec)
}

// Share grants target read access. Owner only.
func (slf *ChartService) Share(username string, id uint, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return domain.ErrValidation("username must not be empty")
	}
	if _, err := slf.findOwned(username, id); err != nil {
		return err
	}
	if err := slf.shareRepo.Add(models.ResourceChart, id, target); err != nil {
		slf.logger.Error().Err(err).Uint("chartId", id).Msg("Failed to share chart")
		return catalogError("share chart", err)
	}
	slf.logger.Info().Uint("chartId", id).Str("sharedWith", target).Msg("Chart shared")
	return nil
}
