package response

type Role struct {
	ID       uint   `json:"id"`
	RoleName string `json:"role_name"`
}

type Table struct {
	ID          uint   `json:"id"`
	TableName   string `json:"table_name"`
	Description string `json:"description"`
}

type Group struct {
	ID        uint    `json:"id"`
	GroupName string  `json:"group_name"`
	Tables    []Table `json:"tables"`
}
