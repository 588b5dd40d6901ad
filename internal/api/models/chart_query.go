package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultQueryLimit = 10
	DefaultSortOrder  = "desc"
)

// ChartQuerySpec is the declarative aggregation request behind a chart.
type ChartQuerySpec struct {
	DatasetID      uint                  `json:"dataset_id"`
	ChartType      string                `json:"chart_type,omitempty"`
	LabelFields    []string              `json:"label_fields"`
	ValueFields    []string              `json:"value_fields"`
	DimensionField *string               `json:"dimension_field,omitempty"`
	Filters        map[string]FilterItem `json:"filters,omitempty"`
	Limit          *int                  `json:"limit,omitempty"`
	SortOrder      *string               `json:"sort_order,omitempty"`

	// Charts saved before multi-value support carried a single value_field.
	LegacyValueField string `json:"value_field,omitempty"`
}

// Normalize folds the legacy single value_field into value_fields.
func (q *ChartQuerySpec) Normalize() {
	if len(q.ValueFields) == 0 && q.LegacyValueField != "" {
		q.ValueFields = []string{q.LegacyValueField}
	}
	q.LegacyValueField = ""
}

// ApplyDefaults fills limit and sort order the way the chart-data endpoint expects.
func (q *ChartQuerySpec) ApplyDefaults() {
	if q.Limit == nil {
		limit := DefaultQueryLimit
		q.Limit = &limit
	}
	if q.SortOrder == nil {
		order := DefaultSortOrder
		q.SortOrder = &order
	}
}

// Dimension returns the breakdown column, or "" when none is set.
func (q ChartQuerySpec) Dimension() string {
	if q.DimensionField == nil {
		return ""
	}
	return *q.DimensionField
}

func (q ChartQuerySpec) Value() (driver.Value, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (q *ChartQuerySpec) Scan(value interface{}) error {
	if err := scanJSON(value, q, "ChartQuerySpec"); err != nil {
		return err
	}
	q.Normalize()
	return nil
}

// FilterItem is a single WHERE predicate keyed by column name in ChartQuerySpec.Filters.
type FilterItem struct {
	Operator   string      `json:"operator"`
	Value      FilterValue `json:"value"`
	FilterType string      `json:"filterType,omitempty"`
}

// FilterValue is either a scalar string or, for between, a list of bounds.
// List is non-nil exactly when the JSON value was an array.
type FilterValue struct {
	Scalar string
	List   []string
}

func Scalar(v string) FilterValue {
	return FilterValue{Scalar: v}
}

func Range(start, end string) FilterValue {
	return FilterValue{List: []string{start, end}}
}

func (v FilterValue) IsList() bool {
	return v.List != nil
}

func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.List != nil {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Scalar)
}

func (v *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = FilterValue{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &v.Scalar)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v.List = make([]string, 0, len(raw))
		for _, item := range raw {
			s, err := scalarText(item)
			if err != nil {
				return err
			}
			v.List = append(v.List, s)
		}
		return nil
	case '{':
		return fmt.Errorf("filter value must be a string or a list of strings")
	default:
		s, err := scalarText(data)
		if err != nil {
			return err
		}
		v.Scalar = s
		return nil
	}
}

// scalarText accepts strings as-is and keeps numbers and booleans in their literal form.
func scalarText(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}
	if len(data) == 0 || data[0] == '[' || data[0] == '{' || bytes.Equal(data, []byte("null")) {
		return "", fmt.Errorf("filter value must be a string or a list of strings")
	}
	return string(data), nil
}

var colorSchemes = map[string]bool{
	"tableau10":  true,
	"category10": true,
	"pastel1":    true,
	"set3":       true,
}

// ChartConfig holds presentation settings of a saved chart.
type ChartConfig struct {
	ColorScheme string `json:"colorScheme"`
	ShowLegend  bool   `json:"showLegend"`
	Limit       int    `json:"limit"`
	SortOrder   string `json:"sortOrder"`
}

func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		ColorScheme: "tableau10",
		ShowLegend:  true,
		Limit:       DefaultQueryLimit,
		SortOrder:   DefaultSortOrder,
	}
}

// Validate reports the first invalid field as a plain error; callers wrap it.
func (c ChartConfig) Validate() error {
	if !colorSchemes[strings.ToLower(c.ColorScheme)] {
		return fmt.Errorf("colorScheme must be one of tableau10, category10, pastel1, set3")
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be a positive integer")
	}
	if o := strings.ToLower(c.SortOrder); o != "asc" && o != "desc" {
		return fmt.Errorf("sortOrder must be asc or desc")
	}
	return nil
}

func (c ChartConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *ChartConfig) Scan(value interface{}) error {
	return scanJSON(value, c, "ChartConfig")
}
