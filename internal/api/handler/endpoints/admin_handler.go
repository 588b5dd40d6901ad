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

type adminHandler struct {
	roleService *service.RoleService
	authService *service.AuthService
	adminMapper mapper.AdminMapper
	logger      zerolog.Logger
}

func AdminHandler(router *graceful.Graceful, s *Services) {
	h := &adminHandler{
		roleService: s.RoleAdmin,
		authService: s.Auth,
		adminMapper: mapper.NewAdminMapper(),
		logger:      s.Logger,
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(s.Config))
	admin.Use(middleware.RequireAdmin(s.Roles))
	{
		admin.GET("/roles", h.listRoles)
		admin.POST("/roles", h.createRole)
		admin.PUT("/roles/:id/groups", h.setRoleGroups)

		admin.GET("/groups", h.listGroups)
		admin.POST("/groups", h.createGroup)
		admin.POST("/groups/:id/tables", h.addTable)

		admin.GET("/users", h.listUsers)
		admin.POST("/users", h.createUser)
		admin.PUT("/users/role", h.assignRole)
	}
}

func (slf *adminHandler) listRoles(c *gin.Context) {
	roles, err := slf.roleService.ListRoles()
	if err != nil {
		writeError(c, slf.logger, err, "Failed to list roles")
		return
	}
	c.JSON(http.StatusOK, slf.adminMapper.ToRoleResponses(roles))
}

func (slf *adminHandler) createRole(c *gin.Context) {
	var req request.CreateRole
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := slf.roleService.CreateRole(req.RoleName)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create role")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": role.ID, "role_name": role.RoleName})
}

func (slf *adminHandler) setRoleGroups(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	var req request.SetRoleGroups
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	if err := slf.roleService.SetRoleGroups(id, req.GroupIDs); err != nil {
		writeError(c, slf.logger, err, "Failed to set role groups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "group_ids": req.GroupIDs})
}

func (slf *adminHandler) listGroups(c *gin.Context) {
	groups, err := slf.roleService.ListGroups()
	if err != nil {
		writeError(c, slf.logger, err, "Failed to list groups")
		return
	}
	c.JSON(http.StatusOK, slf.adminMapper.ToGroupResponses(groups))
}

func (slf *adminHandler) createGroup(c *gin.Context) {
	var req request.CreateGroup
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := slf.roleService.CreateGroup(req.GroupName)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create group")
		return
	}
	c.JSON(http.StatusCreated, slf.adminMapper.ToGroupResponse(*group))
}

func (slf *adminHandler) addTable(c *gin.Context) {
	id, ok := pkg.ParamID(c, "id")
	if !ok {
		return
	}

	var req request.AddTable
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	table, err := slf.roleService.AddTable(slf.adminMapper.ToCatalogTable(req, id))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to add table")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": table.ID, "table_name": table.Name, "group_id": id})
}

func (slf *adminHandler) listUsers(c *gin.Context) {
	users, err := slf.authService.ListUsers()
	if err != nil {
		writeError(c, slf.logger, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (slf *adminHandler) createUser(c *gin.Context) {
	var req request.CreateUserDTO
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := slf.authService.CreateUser(req)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (slf *adminHandler) assignRole(c *gin.Context) {
	var req request.AssignRole
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	if err := slf.roleService.AssignRole(req.Username, req.RoleID); err != nil {
		writeError(c, slf.logger, err, "Failed to assign role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": req.Username, "role_id": req.RoleID})
}
