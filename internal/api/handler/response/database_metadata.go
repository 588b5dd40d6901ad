package response

import "analytics/pkg"

type Schema struct {
	SchemaName string `json:"schema_name"`
}

type SchemaList struct {
	Schemas []Schema `json:"schemas"`
}

type TableList struct {
	Tables []pkg.TableMetadata `json:"tables"`
}

type Column struct {
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
}

type ColumnList struct {
	TableName  string   `json:"table_name"`
	SchemaName string   `json:"schema_name"`
	Columns    []Column `json:"columns"`
}
