package models

const AdminRole = "admin"

type Role struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RoleName string `gorm:"uniqueIndex;not null;size:100" json:"role_name"`
}

func (Role) TableName() string {
	return "roles"
}

// UserRole assigns exactly one role to a username.
type UserRole struct {
	Username string `gorm:"primaryKey;size:100" json:"username"`
	RoleID   uint   `gorm:"not null;index" json:"role_id"`
	Role     Role   `gorm:"foreignKey:RoleID" json:"-"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// TableGroup is a named set of warehouse tables granted to roles as a unit.
type TableGroup struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	GroupName string         `gorm:"uniqueIndex;not null;size:100" json:"group_name"`
	Tables    []CatalogTable `gorm:"foreignKey:GroupID" json:"tables"`
}

func (TableGroup) TableName() string {
	return "table_groups"
}

// CatalogTable is a warehouse table the NL translator may mention in prompts.
type CatalogTable struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"column:table_name;uniqueIndex;not null;size:255" json:"table_name"`
	Description string `gorm:"type:text" json:"description"`
	GroupID     *uint  `gorm:"index" json:"group_id,omitempty"`
}

func (CatalogTable) TableName() string {
	return "tables"
}

type RoleGroupPermission struct {
	RoleID  uint `gorm:"primaryKey" json:"role_id"`
	GroupID uint `gorm:"primaryKey" json:"group_id"`
}

func (RoleGroupPermission) TableName() string {
	return "role_group_permissions"
}
