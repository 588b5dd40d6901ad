package mapper

import (
	"analytics/internal/api/handler/request"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
)

type AdminMapper interface {
	ToRoleResponses(roles []models.Role) []response.Role
	ToGroupResponse(g models.TableGroup) response.Group
	ToGroupResponses(groups []models.TableGroup) []response.Group
	ToCatalogTable(req request.AddTable, groupID uint) models.CatalogTable
}

type AdminMapperImpl struct{}

func NewAdminMapper() AdminMapper {
	return &AdminMapperImpl{}
}

func (m *AdminMapperImpl) ToRoleResponses(roles []models.Role) []response.Role {
	result := make([]response.Role, len(roles))
	for i, r := range roles {
		result[i] = response.Role{ID: r.ID, RoleName: r.RoleName}
	}
	return result
}

func (m *AdminMapperImpl) ToGroupResponse(g models.TableGroup) response.Group {
	tables := make([]response.Table, len(g.Tables))
	for i, t := range g.Tables {
		tables[i] = response.Table{ID: t.ID, TableName: t.Name, Description: t.Description}
	}
	return response.Group{ID: g.ID, GroupName: g.GroupName, Tables: tables}
}

func (m *AdminMapperImpl) ToGroupResponses(groups []models.TableGroup) []response.Group {
	result := make([]response.Group, len(groups))
	for i, g := range groups {
		result[i] = m.ToGroupResponse(g)
	}
	return result
}

func (m *AdminMapperImpl) ToCatalogTable(req request.AddTable, groupID uint) models.CatalogTable {
	return models.CatalogTable{
		Name:        req.TableName,
		Description: req.Description,
		GroupID:     &groupID,
	}
}
