package endpoints

import (
	"net/http"

	"analytics/internal/api/handler/mapper"
	"analytics/internal/api/handler/middleware"
	"analytics/internal/api/handler/request"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
	"analytics/internal/api/service"
	"analytics/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type chartHandler struct {
	chartService *service.ChartService
	chartMapper  mapper.ChartMapper
	logger       zerolog.Logger
}

func ChartHandler(router *graceful.Graceful, s *Services) {
	h := &chartHandler{
		chartService: s.Charts,
		chartMapper:  mapper.NewChartMapper(),
		logger:       s.Logger,
	}

	routes := router.Group("/api/charts")
	routes.Use(middleware.AuthMiddleware(s.Config))
	{
		routes.GET("", h.getAll)
		routes.POST("", h.create)
		routes.POST("/query", h.query)
		routes.GET("/:id", h.getByID)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
		routes.POST("/:id/share", h.share)
	}
}

func (slf *chartHandler) getAll(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	charts, err := slf.chartService.ListVisible(username)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to list charts")
		return
	}
	c.JSON(http.StatusOK, slf.chartMapper.ToChartResponses(charts))
}

func (slf *chartHandler) create(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	var req request.CreateChart
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	chart, dataset, err := slf.chartService.Create(username, req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create chart")
		return
	}

	c.JSON(http.StatusCreated, response.ChartCreated{
		ID:         chart.ID,
		Name:       chart.Name,
		SchemaName: dataset.SchemaName,
		Message:    "Chart created successfully",
	})
}

// query runs an unsaved chart query.
func (slf *chartHandler) query(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	var spec models.ChartQuerySpec
	if err := pkg.ParseAndValidate(c, &spec); err != nil {
		badRequest(c, err)
		return
	}

	result, err := slf.chartService.RunAdHoc(c.Request.Context(), username, spec)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to run chart query")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (slf *chartHandler) getByID(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	chart, data, err := slf.chartService.Get(c.Request.Context(), username, id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to load chart")
		return
	}
	c.JSON(http.StatusOK, response.ChartWithData{Chart: slf.chartMapper.ToChartResponse(*chart), Data: *data})
}

func (slf *chartHandler) update(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateChart
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	chart, err := slf.chartService.Update(username, id, req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to update chart")
		return
	}
	c.JSON(http.StatusOK, slf.chartMapper.ToChartResponse(*chart))
}

func (slf *chartHandler) delete(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	if err := slf.chartService.Delete(username, id); err != nil {
		writeError(c, slf.logger, err, "Failed to delete chart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (slf *chartHandler) share(c *gin.Context) {
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

	if err := slf.chartService.Share(username, id, req.Username); err != nil {
		writeError(c, slf.logger, err, "Failed to share chart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "shared_with": req.Username})
}
