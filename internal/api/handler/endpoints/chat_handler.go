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

type chatHandler struct {
	chatService   *service.ChatService
	historyMapper mapper.HistoryMapper
	logger        zerolog.Logger
}

func ChatHandler(router *graceful.Graceful, s *Services) {
	h := &chatHandler{
		chatService:   s.Chat,
		historyMapper: mapper.NewHistoryMapper(),
		logger:        s.Logger,
	}

	routes := router.Group("/api")
	routes.Use(middleware.AuthMiddleware(s.Config))
	{
		routes.POST("/chat/query", h.ask)
		routes.GET("/history", h.history)
	}
}

func (slf *chatHandler) ask(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	var req request.ChatQuery
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	answer, err := slf.chatService.Ask(c.Request.Context(), username, req.Question)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to answer question")
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (slf *chatHandler) history(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}

	entries, err := slf.chatService.History(username)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to load history")
		return
	}
	c.JSON(http.StatusOK, slf.historyMapper.ToHistoryResponses(entries))
}
