package endpoints

import (
	"analytics"
	"analytics/internal/api/repo"
	"analytics/internal/api/service"

	"github.com/rs/zerolog"
)

// Services is everything the HTTP handlers call into. It is assembled once at
// startup.
type Services struct {
	Config     analytics.AppConfig
	Logger     zerolog.Logger
	Roles      *repo.RoleRepository
	Auth       *service.AuthService
	Datasets   *service.DatasetService
	Charts     *service.ChartService
	Dashboards *service.DashboardService
	Comments   *service.CommentService
	Chat       *service.ChatService
	RoleAdmin  *service.RoleService
	Metadata   *service.DatabaseMetadataService
}
