package request

// CreateDataset registers a warehouse table.
type CreateDataset struct {
	Database   string `json:"database" validate:"required"`
	SchemaName string `json:"schema_name" validate:"required"`
	TableName  string `json:"table_name" validate:"required"`
}
