package endpoints

import (
	"net/http"

	"analytics/internal/api/handler/mapper"
	"analytics/internal/api/handler/middleware"
	"analytics/internal/api/handler/request"
	"analytics/internal/api/service"
	"analytics/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type dashboardHandler struct {
	dashboardService *service.DashboardService
	commentService   *service.CommentService
	dashboardMapper  mapper.DashboardMapper
	logger           zerolog.Logger
}

func DashboardHandler(router *graceful.Graceful, s *Services) {
	h := &dashboardHandler{
		dashboardService: s.Dashboards,
		commentService:   s.Comments,
		dashboardMapper:  mapper.NewDashboardMapper(),
		logger:           s.Logger,
	}

	routes := router.Group("/api/dashboards")
	routes.Use(middleware.AuthMiddleware(s.Config))
	{
		routes.GET("", h.getAll)
		routes.POST("", h.create)
		routes.GET("/:id", h.getByID)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
		routes.POST("/:id/share", h.share)

		routes.GET("/:id/comments", h.listComments)
		routes.POST("/:id/comments", h.createComment)
		routes.DELETE("/:id/comments/:commentId", h.deleteComment)
	}
}

func (slf *dashboardHandler) getAll(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	dashboards, err := slf.dashboardService.ListVisible(username)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to list dashboards")
		return
	}
	c.JSON(http.StatusOK, slf.dashboardMapper.ToDashboardResponses(dashboards))
}

func (slf *dashboardHandler) create(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	var req request.CreateDashboard
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	dashboard, err := slf.dashboardService.Create(username, req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create dashboard")
		return
	}
	c.JSON(http.StatusCreated, slf.dashboardMapper.ToDashboardResponse(*dashboard))
}

func (slf *dashboardHandler) getByID(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	dashboard, err := slf.dashboardService.Get(username, id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, slf.dashboardMapper.ToDashboardResponse(*dashboard))
}

func (slf *dashboardHandler) update(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateDashboard
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	dashboard, err := slf.dashboardService.Update(username, id, req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to update dashboard")
		return
	}
	c.JSON(http.StatusOK, slf.dashboardMapper.ToDashboardResponse(*dashboard))
}

func (slf *dashboardHandler) delete(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	if err := slf.dashboardService.Delete(username, id); err != nil {
		writeError(c, slf.logger, err, "Failed to delete dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (slf *dashboardHandler) share(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	var req request.Share
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	if err := slf.dashboardService.Share(username, id, req.Username); err != nil {
		writeError(c, slf.logger, err, "Failed to share dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "shared_with": req.Username})
}

func (slf *dashboardHandler) listComments(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	comments, err := slf.commentService.List(username, id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to list comments")
		return
	}
	c.JSON(http.StatusOK, slf.dashboardMapper.ToCommentResponses(comments))
}

func (slf *dashboardHandler) createComment(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	var req request.CreateComment
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := slf.commentService.Create(username, id, req.Content)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create comment")
		return
	}
	c.JSON(http.StatusCreated, slf.dashboardMapper.ToCommentResponse(*comment))
}

func (slf *dashboardHandler) deleteComment(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pkg.ParamID(c, "commentId")
	if !ok {
		return
	}

	if err := slf.commentService.Delete(username, id, commentID); err != nil {
		writeError(c, slf.logger, err, "Failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": commentID, "deleted": true})
}
