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

type datasetHandler struct {
	datasetService *service.DatasetService
	datasetMapper  mapper.DatasetMapper
	logger         zerolog.Logger
}

func DatasetHandler(router *graceful.Graceful, s *Services) {
	h := &datasetHandler{
		datasetService: s.Datasets,
		datasetMapper:  mapper.NewDatasetMapper(),
		logger:         s.Logger,
	}

	routes := router.Group("/api/datasets")
	routes.Use(middleware.AuthMiddleware(s.Config))
	{
		routes.GET("", h.getAll)
		routes.POST("", h.create)
		routes.DELETE("/:id", h.delete)
	}
}

func (h *datasetHandler) getAll(c *gin.Context) {
	datasets, err := h.datasetService.FindAll()
	if err != nil {
		writeError(c, h.logger, err, "Failed to get datasets")
		return
	}
	c.JSON(http.StatusOK, h.datasetMapper.ToDatasetResponses(datasets))
}

func (h *datasetHandler) create(c *gin.Context) {
	var req request.CreateDataset
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.datasetService.Create(h.datasetMapper.ToDataset(req))
	if err != nil {
		writeError(c, h.logger, err, "Failed to create dataset")
		return
	}
	c.JSON(http.StatusCreated, h.datasetMapper.ToDatasetResponse(*created))
}

func (h *datasetHandler) delete(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.datasetService.Delete(id); err != nil {
		writeError(c, h.logger, err, "Failed to delete dataset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
