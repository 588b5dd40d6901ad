package request

type CreateRole struct {
	RoleName string `json:"role_name" validate:"required,max=100"`
}

type SetRoleGroups struct {
	GroupIDs []uint `json:"group_ids"`
}

type CreateGroup struct {
	GroupName string `json:"group_name" validate:"required,max=100"`
}

type AddTable struct {
	TableName   string `json:"table_name" validate:"required"`
	Description string `json:"description"`
}

type AssignRole struct {
	Username string `json:"username" validate:"required"`
	RoleID   uint   `json:"role_id" validate:"required"`
}
