package endpoints

import (
	"net/http"

	"analytics/internal/api/handler/middleware"
	"analytics/internal/api/handler/request"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/service"
	"analytics/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type authHandler struct {
	authService *service.AuthService
	logger      zerolog.Logger
}

func AuthHandler(router *graceful.Graceful, s *Services) {
	h := &authHandler{authService: s.Auth, logger: s.Logger}

	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.login)
	}

	protected := router.Group("/api/auth")
	protected.Use(middleware.AuthMiddleware(s.Config))
	{
		protected.GET("/me", h.getMe)
	}
}

func (slf *authHandler) login(c *gin.Context) {
	var loginDTO request.LoginDTO
	if err := pkg.ParseAndValidate(c, &loginDTO); err != nil {
		slf.logger.Debug().Err(err).Msg("Error parsing and validating login DTO")
		badRequest(c, err)
		return
	}

	authResponse, err := slf.authService.Login(c.Request.Context(), loginDTO)
	if err != nil {
		writeError(c, slf.logger, err, "Error logging in user")
		return
	}

	c.JSON(http.StatusOK, authResponse)
}

func (slf *authHandler) getMe(c *gin.Context) {
	username, ok := pkg.GetUsername(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.MeResponse{Username: username})
}
