package service

import (
	"strings"

	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/domain"

	"github.com/rs/zerolog"
)

// CommentService manages comments on dashboards. Reading and writing require
// view access to the dashboard.
type CommentService struct {
	commentRepo *repo.CommentRepository
	dashboards  *DashboardService
	logger      zerolog.Logger
}

func NewCommentService(commentRepo *repo.CommentRepository, dashboards *DashboardService, logger zerolog.Logger) *CommentService {
	return &CommentService{commentRepo: commentRepo, dashboards: dashboards, logger: logger}
}

func (slf *CommentService) Create(username string, dashboardID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrValidation("content must not be empty")
	}
	if _, err := slf.dashboards.Get(username, dashboardID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ResourceType: models.ResourceDashboard,
		ResourceID:   dashboardID,
		Username:     username,
		Content:      content,
	}
	if err := slf.commentRepo.Create(&comment); err != nil {
		slf.logger.Error().Err(err).Uint("dashboardId", dashboardID).Msg("Failed to create comment")
		return nil, catalogError("create comment", err)
	}
	return &comment, nil
}

// List returns the dashboard's comments, newest first.
func (slf *CommentService) List(username string, dashboardID uint) ([]models.Comment, error) {
	if _, err := slf.dashboards.Get(username, dashboardID); err != nil {
		return nil, err
	}
	comments, err := slf.commentRepo.FindFor(models.ResourceDashboard, dashboardID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("dashboardId", dashboardID).Msg("Failed to list comments")
		return nil, catalogError("list comments", err)
	}
	return comments, nil
}

// Delete removes a comment. Only its author may do so.
func (slf *CommentService) Delete(username string, dashboardID, commentID uint) error {
	comment, err := slf.commentRepo.FindByID(commentID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound("comment %d not found", commentID)
		}
		slf.logger.Error().Err(err).Uint("commentId", commentID).Msg("Failed to load comment")
		return catalogError("load comment", err)
	}
	if comment.ResourceType != models.ResourceDashboard || comment.ResourceID != dashboardID {
		return domain.ErrNotFound("comment %d not found", commentID)
	}
	if comment.Username != username {
		return domain.ErrPermissionDenied("only the author can delete comment %d", commentID)
	}
	if err := slf.commentRepo.Delete(commentID); err != nil {
		slf.logger.Error().Err(err).Uint("commentId", commentID).Msg("Failed to delete comment")
		return catalogError("delete comment", err)
	}
	return nil
}
