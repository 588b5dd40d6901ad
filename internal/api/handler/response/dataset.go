package response

import (
	"time"
)

type Dataset struct {
	ID         uint      `json:"id"`
	Database   string    `json:"database"`
	SchemaName string    `json:"schema_name"`
	TableName  string    `json:"table_name"`
	CreatedAt  time.Time `json:"created_at"`
}
