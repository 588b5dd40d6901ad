package repo

import (
	"errors"

	"analytics/internal/api/models"
	"analytics/internal/domain"

	"gorm.io/gorm"
)

// RoleRepository reads and writes role, group and grant rows. It also serves
// as the role directory of the NL translator.
type RoleRepository struct {
	Db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{Db: db}
}

// RoleOf returns the role name assigned to username. A user with no role is
// denied rather than reported missing.
func (slf *RoleRepository) RoleOf(username string) (string, error) {
	var assignment models.UserRole
	err := slf.Db.Preload("Role").Where("username = ?", username).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrPermissionDenied("no role assigned to user %s", username)
	}
	if err != nil {
		return "", err
	}
	return assignment.Role.RoleName, nil
}

// GroupsFor lists the table groups granted to role with their tables. The
// admin role sees every group.
func (slf *RoleRepository) GroupsFor(role string) ([]models.TableGroup, error) {
	query := slf.Db.Preload("Tables", func(db *gorm.DB) *gorm.DB {
		return db.Order("table_name ASC")
	}).Order("group_name ASC")

	if role != models.AdminRole {
		query = query.Select("table_groups.*").
			Joins("JOIN role_group_permissions rgp ON rgp.group_id = table_groups.id").
			Joins("JOIN roles r ON r.id = rgp.role_id").
			Where("r.role_name = ?", role)
	}

	groups := []models.TableGroup{}
	err := query.Find(&groups).Error
	return groups, err
}

// AllowedTables is the distinct set of table names across the role's groups.
func (slf *RoleRepository) AllowedTables(role string) ([]string, error) {
	query := slf.Db.Model(&models.CatalogTable{}).Distinct("tables.table_name")
	if role != models.AdminRole {
		query = query.
			Joins("JOIN role_group_permissions rgp ON rgp.group_id = tables.group_id").
			Joins("JOIN roles r ON r.id = rgp.role_id").
			Where("r.role_name = ?", role)
	}
	tables := []string{}
	err := query.Order("tables.table_name ASC").Pluck("tables.table_name", &tables).Error
	return tables, err
}

func (slf *RoleRepository) ListRoles() ([]models.Role, error) {
	roles := []models.Role{}
	err := slf.Db.Order("role_name ASC").Find(&roles).Error
	return roles, err
}

func (slf *RoleRepository) FindRoleByID(id uint) (models.Role, error) {
	var role models.Role
	err := slf.Db.First(&role, id).Error
	return role, err
}

func (slf *RoleRepository) CreateRole(role *models.Role) error {
	return slf.Db.Create(role).Error
}

// SetRoleGroups replaces every grant of roleID with groupIDs.
func (slf *RoleRepository) SetRoleGroups(roleID uint, groupIDs []uint) error {
	return slf.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RoleGroupPermission{}).Error; err != nil {
			return err
		}
		if len(groupIDs) == 0 {
			return nil
		}
		grants := make([]models.RoleGroupPermission, 0, len(groupIDs))
		for _, id := range groupIDs {
			grants = append(grants, models.RoleGroupPermission{RoleID: roleID, GroupID: id})
		}
		return tx.Create(&grants).Error
	})
}

func (slf *RoleRepository) ListGroups() ([]models.TableGroup, error) {
	return slf.GroupsFor(models.AdminRole)
}

// CountGroups reports how many of ids exist as table groups.
func (slf *RoleRepository) CountGroups(ids []uint) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := slf.Db.Model(&models.TableGroup{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (slf *RoleRepository) CreateGroup(group *models.TableGroup) error {
	return slf.Db.Create(group).Error
}

func (slf *RoleRepository) GroupExists(id uint) (bool, error) {
	var count int64
	err := slf.Db.Model(&models.TableGroup{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (slf *RoleRepository) AddTable(table *models.CatalogTable) error {
	return slf.Db.Create(table).Error
}

// AssignRole sets the single role of username, replacing any previous one.
func (slf *RoleRepository) AssignRole(username string, roleID uint) error {
	return slf.Db.Omit("Role").Save(&models.UserRole{Username: username, RoleID: roleID}).Error
}
