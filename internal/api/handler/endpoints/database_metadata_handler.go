package endpoints

import (
	"net/http"

	"analytics/internal/api/handler/middleware"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/service"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type databaseMetadataHandler struct {
	metadataService *service.DatabaseMetadataService
	logger          zerolog.Logger
}

// DatabaseMetadataHandler sets up the warehouse browsing routes.
func DatabaseMetadataHandler(router *graceful.Graceful, s *Services) {
	h := &databaseMetadataHandler{
		metadataService: s.Metadata,
		logger:          s.Logger,
	}

	routes := router.Group("/api/database")
	routes.Use(middleware.AuthMiddleware(s.Config))
	{
		routes.GET("/schemas", h.getSchemas)
		routes.GET("/tables", h.getTables)
		routes.GET("/columns", h.getColumns)
	}
}

func (h *databaseMetadataHandler) getSchemas(c *gin.Context) {
	schemas, err := h.metadataService.IntrospectSchemas(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Failed to fetch schemas")
		return
	}

	out := response.SchemaList{Schemas: make([]response.Schema, 0, len(schemas))}
	for _, name := range schemas {
		out.Schemas = append(out.Schemas, response.Schema{SchemaName: name})
	}
	c.JSON(http.StatusOK, out)
}

// getTables expects ?schema_name=.
func (h *databaseMetadataHandler) getTables(c *gin.Context) {
	tables, err := h.metadataService.IntrospectTables(c.Request.Context(), c.Query("schema_name"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to fetch tables")
		return
	}
	c.JSON(http.StatusOK, response.TableList{Tables: tables})
}

// getColumns expects ?schema_name=&table_name=.
func (h *databaseMetadataHandler) getColumns(c *gin.Context) {
	schema, table := c.Query("schema_name"), c.Query("table_name")
	columns, err := h.metadataService.IntrospectColumns(c.Request.Context(), schema, table)
	if err != nil {
		writeError(c, h.logger, err, "Failed to fetch columns")
		return
	}

	out := response.ColumnList{TableName: table, SchemaName: schema, Columns: make([]response.Column, 0, len(columns))}
	for _, col := range columns {
		out.Columns = append(out.Columns, response.Column{ColumnName: col.ColumnName, DataType: col.DataType})
	}
	c.JSON(http.StatusOK, out)
}
