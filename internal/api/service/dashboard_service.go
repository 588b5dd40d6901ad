package service

import (
	"fmt"
	"regexp"
	"strings"

	"analytics/internal/api/handler/request"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/domain"

	"github.com/rs/zerolog"
)

var layoutItemID = regexp.MustCompile(`^(chart|title|text)_\d+$`)

type DashboardService struct {
	dashboardRepo *repo.DashboardRepository
	chartRepo     *repo.ChartRepository
	shareRepo     *repo.ShareRepository
	logger        zerolog.Logger
}

func NewDashboardService(dashboardRepo *repo.DashboardRepository, chartRepo *repo.ChartRepository, shareRepo *repo.ShareRepository, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		chartRepo:     chartRepo,
		shareRepo:     shareRepo,
		logger:        logger,
	}
}

// ValidateLayout checks every grid item's id, type, geometry and content.
func ValidateLayout(layout models.DashboardLayout) error {
	for idx, item := range layout {
		if !layoutItemID.MatchString(item.I) {
			return domain.ErrValidation("layout[%d]: invalid item id %q", idx, item.I)
		}
		if item.X < 0 || item.Y < 0 || item.W < 0 || item.H < 0 {
			return domain.ErrValidation("layout[%d]: x, y, w and h must be non-negative", idx)
		}
		switch item.Type {
		case models.LayoutChart:
			if item.Content.ChartID == nil {
				return domain.ErrValidation("layout[%d]: chart item requires content.chart_id", idx)
			}
		case models.LayoutTitle, models.LayoutText:
			if item.Content.Text == nil {
				return domain.ErrValidation("layout[%d]: %s item requires content.text", idx, item.Type)
			}
		default:
			return domain.ErrValidation("layout[%d]: type must be chart, title or text", idx)
		}
		if !strings.HasPrefix(item.I, string(item.Type)+"_") {
			return domain.ErrValidation("layout[%d]: item id %q does not match type %s", idx, item.I, item.Type)
		}
	}
	return nil
}

// checkCharts verifies every referenced chart exists before anything is written.
func (slf *DashboardService) checkCharts(layout models.DashboardLayout) error {
	ids := layout.ChartIDs()
	if len(ids) == 0 {
		return nil
	}
	found, err := slf.chartRepo.ExistingIDs(ids)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to check dashboard charts")
		return catalogError("check dashboard charts", err)
	}
	existing := make(map[uint]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return domain.ErrValidation("unknown chart id(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func (slf *DashboardService) Create(username string, req request.CreateDashboard) (*models.Dashboard, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrValidation("title must not be empty")
	}
	layout := req.Layout
	if layout == nil {
		layout = models.DashboardLayout{}
	}
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	if err := slf.checkCharts(layout); err != nil {
		return nil, err
	}

	dashboard := models.Dashboard{
		Title:       title,
		Description: req.Description,
		Owner:       username,
		Layout:      layout,
	}
	if err := slf.dashboardRepo.Create(&dashboard); err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to create dashboard")
		return nil, catalogError("create dashboard", err)
	}
	dashboard.SharedWith = []string{}
	slf.logger.Info().Uint("dashboardId", dashboard.ID).Str("username", username).Msg("Dashboard created")
	return &dashboard, nil
}

func (slf *DashboardService) find(id uint) (models.Dashboard, error) {
	dashboard, err := slf.dashboardRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return models.Dashboard{}, domain.ErrNotFound("dashboard %d not found", id)
		}
		slf.logger.Error().Err(err).Uint("dashboardId", id).Msg("Failed to load dashboard")
		return models.Dashboard{}, catalogError("load dashboard", err)
	}
	return dashboard, nil
}

// Get returns the dashboard if username owns it or it was shared with them.
func (slf *DashboardService) Get(username string, id uint) (*models.Dashboard, error) {
	dashboard, err := slf.find(id)
	if err != nil {
		return nil, err
	}
	if !dashboard.CanView(username) {
		return nil, domain.ErrPermissionDenied("you do not have access to dashboard %d", id)
	}
	return &dashboard, nil
}

func (slf *DashboardService) findOwned(username string, id uint) (models.Dashboard, error) {
	dashboard, err := slf.find(id)
	if err != nil {
		return dashboard, err
	}
	if dashboard.Owner != username {
		return dashboard, domain.ErrPermissionDenied("only the owner can modify dashboard %d", id)
	}
	return dashboard, nil
}

func (slf *DashboardService) ListVisible(username string) ([]models.Dashboard, error) {
	dashboards, err := slf.dashboardRepo.FindVisibleTo(username)
	if err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to list dashboards")
		return nil, catalogError("list dashboards", err)
	}
	return dashboards, nil
}

func (slf *DashboardService) Update(username string, id uint, req request.UpdateDashboard) (*models.Dashboard, error) {
	dashboard, err := slf.findOwned(username, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrValidation("title must not be empty")
		}
		dashboard.Title = title
	}
	if req.Description != nil {
		dashboard.Description = req.Description
	}
	if req.Layout != nil {
		if err := ValidateLayout(*req.Layout); err != nil {
			return nil, err
		}
		if err := slf.checkCharts(*req.Layout); err != nil {
			return nil, err
		}
		dashboard.Layout = *req.Layout
	}

	if err := slf.dashboardRepo.Update(&dashboard); err != nil {
		slf.logger.Error().Err(err).Uint("dashboardId", id).Msg("Failed to update dashboard")
		return nil, catalogError("update dashboard", err)
	}
	return &dashboard, nil
}

func (slf *DashboardService) Delete(username string, id uint) error {
	if _, err := slf.findOwned(username, id); err != nil {
		return err
	}
	if err := slf.dashboardRepo.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("dashboardId", id).Msg("Failed to delete dashboard")
		return catalogError("delete dashboard", err)
	}
	return nil
}

func (slf *DashboardService) Share(username string, id uint, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return domain.ErrValidation("username must not be empty")
	}
	if _, err := slf.findOwned(username, id); err != nil {
		return err
	}
	if err := slf.shareRepo.Add(models.ResourceDashboard, id, target); err != nil {
		slf.logger.Error().Err(err).Uint("dashboardId", id).Msg("Failed to share dashboard")
		return catalogError("share dashboard", err)
	}
	return nil
}
