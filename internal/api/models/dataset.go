package models

import (
	"time"
)

// Dataset identifies a physical warehouse table. Charts reference it by id.
type Dataset struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Database   string    `gorm:"column:database_name;not null" json:"database"`
	SchemaName string    `gorm:"not null" json:"schema_name"`
	Table      string    `gorm:"column:table_name;not null" json:"table_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Dataset) TableName() string {
	return "datasets"
}

// QualifiedName is the schema.table reference used in FROM clauses.
func (d Dataset) QualifiedName() string {
	return d.SchemaName + "." + d.Table
}
