package service

import (
	"strings"

	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/chartquery"
	"analytics/internal/domain"

	"github.com/rs/zerolog"
)

// RoleService administers roles, table groups and grants.
type RoleService struct {
	roleRepo *repo.RoleRepository
	logger   zerolog.Logger
}

func NewRoleService(roleRepo *repo.RoleRepository, logger zerolog.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, logger: logger}
}

func (slf *RoleService) ListRoles() ([]models.Role, error) {
	roles, err := slf.roleRepo.ListRoles()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list roles")
		return nil, catalogError("list roles", err)
	}
	return roles, nil
}

func (slf *RoleService) CreateRole(name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidation("role_name must not be empty")
	}
	role := models.Role{RoleName: name}
	if err := slf.roleRepo.CreateRole(&role); err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrConflict("role %q already exists", name)
		}
		slf.logger.Error().Err(err).Str("role", name).Msg("Failed to create role")
		return nil, catalogError("create role", err)
	}
	return &role, nil
}

// SetRoleGroups replaces the role's grants after checking every id exists.
func (slf *RoleService) SetRoleGroups(roleID uint, groupIDs []uint) error {
	if _, err := slf.roleRepo.FindRoleByID(roleID); err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound("role %d not found", roleID)
		}
		return catalogError("find role", err)
	}
	unique := dedupe(groupIDs)
	count, err := slf.roleRepo.CountGroups(unique)
	if err != nil {
		return catalogError("count groups", err)
	}
	if int(count) != len(unique) {
		return domain.ErrValidation("unknown table group id in %v", groupIDs)
	}
	if err := slf.roleRepo.SetRoleGroups(roleID, unique); err != nil {
		slf.logger.Error().Err(err).Uint("roleId", roleID).Msg("Failed to replace role groups")
		return catalogError("set role groups", err)
	}
	slf.logger.Info().Uint("roleId", roleID).Int("groups", len(unique)).Msg("Role groups replaced")
	return nil
}

func (slf *RoleService) ListGroups() ([]models.TableGroup, error) {
	groups, err := slf.roleRepo.ListGroups()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list groups")
		return nil, catalogError("list groups", err)
	}
	return groups, nil
}

func (slf *RoleService) CreateGroup(name string) (*models.TableGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidation("group_name must not be empty")
	}
	group := models.TableGroup{GroupName: name}
	if err := slf.roleRepo.CreateGroup(&group); err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrConflict("group %q already exists", name)
		}
		slf.logger.Error().Err(err).Str("group", name).Msg("Failed to create group")
		return nil, catalogError("create group", err)
	}
	group.Tables = []models.CatalogTable{}
	return &group, nil
}

// AddTable registers a warehouse table under a group.
func (slf *RoleService) AddTable(table models.CatalogTable) (*models.CatalogTable, error) {
	table.Name = strings.TrimSpace(table.Name)
	if !validTableName(table.Name) {
		return nil, domain.ErrValidation("invalid table_name: %q", table.Name)
	}
	if table.GroupID != nil {
		exists, err := slf.roleRepo.GroupExists(*table.GroupID)
		if err != nil {
			return nil, catalogError("find group", err)
		}
		if !exists {
			return nil, domain.ErrNotFound("group %d not found", *table.GroupID)
		}
	}
	if err := slf.roleRepo.AddTable(&table); err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrConflict("table %q is already registered", table.Name)
		}
		slf.logger.Error().Err(err).Str("table", table.Name).Msg("Failed to add table")
		return nil, catalogError("add table", err)
	}
	return &table, nil
}

func (slf *RoleService) AssignRole(username string, roleID uint) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.ErrValidation("username must not be empty")
	}
	if _, err := slf.roleRepo.FindRoleByID(roleID); err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound("role %d not found", roleID)
		}
		return catalogError("find role", err)
	}
	if err := slf.roleRepo.AssignRole(username, roleID); err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to assign role")
		return catalogError("assign role", err)
	}
	return nil
}

// validTableName accepts table or schema.table, the forms the permission gate extracts.
func validTableName(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !chartquery.IsIdentifier(p) {
			return false
		}
	}
	return true
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
