// Package chartquery turns a declarative chart query into parameterized SQL and
// reshapes the warehouse rows into chart responses.
//
// Every identifier that reaches SQL text has been matched against a closed
// pattern by Validate. Filter values only ever travel as bind parameters.
package chartquery

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"analytics/internal/api/models"
	"analytics/internal/domain"
)

var (
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	aggregatePattern  = regexp.MustCompile(`(?i)^(SUM|COUNT|AVG|MIN|MAX)\(([a-zA-Z0-9_]+)\)$`)
)

const (
	OpEqual        = "="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpLess         = "<"
	OpGreaterEqual = ">="
	OpLessEqual    = "<="
	OpLike         = "like"
	OpBetween      = "between"
)

var allowedOperators = map[string]bool{
	OpEqual:        true,
	OpNotEqual:     true,
	OpGreater:      true,
	OpLess:         true,
	OpGreaterEqual: true,
	OpLessEqual:    true,
	OpLike:         true,
	OpBetween:      true,
}

var chartTypes = map[string]bool{"line": true, "bar": true, "pie": true, "scatter": true}

// IsIdentifier reports whether s may be interpolated as a column, schema or table name.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Variant selects how rows are reshaped. It is fixed once a query validates.
type Variant int

const (
	SingleSeries Variant = iota
	MultiSeries
	DimensionPivot
)

func (v Variant) String() string {
	switch v {
	case SingleSeries:
		return "single_series"
	case MultiSeries:
		return "multi_series"
	case DimensionPivot:
		return "dimension_pivot"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Filter is a validated predicate. Values holds one bind parameter, or two for between.
type Filter struct {
	Column   string
	Operator string
	Values   []any
}

// Plan is a validated chart query. Only Validate builds one.
type Plan struct {
	DatasetID      uint
	LabelFields    []string
	ValueFields    []string
	DimensionField string
	Filters        []Filter
	Limit          *int
	SortOrder      string // "ASC", "DESC" or "" for no ORDER BY
	Variant        Variant
}

// Columns returns every plain column the plan touches: labels, dimension,
// aggregate arguments and filter columns, without duplicates.
func (p *Plan) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			return
		}
		seen[key] = true
		cols = append(cols, c)
	}
	for _, f := range p.LabelFields {
		add(f)
	}
	add(p.DimensionField)
	for _, v := range p.ValueFields {
		if m := aggregatePattern.FindStringSubmatch(v); m != nil {
			add(m[2])
		}
	}
	for _, f := range p.Filters {
		add(f.Column)
	}
	return cols
}

// Validate checks q against the lexical rules and returns the plan the builder
// and shaper consume. All failures are *domain.ValidationError.
func Validate(q models.ChartQuerySpec) (*Plan, error) {
	q.Normalize()

	if len(q.LabelFields) == 0 {
		return nil, domain.ErrValidation("label_fields must not be empty")
	}
	if len(q.ValueFields) == 0 {
		return nil, domain.ErrValidation("value_fields must not be empty")
	}
	for _, field := range q.LabelFields {
		if !identifierPattern.MatchString(field) {
			return nil, domain.ErrValidation("invalid label field: %q", field)
		}
	}
	for _, field := range q.ValueFields {
		if !aggregatePattern.MatchString(field) {
			return nil, domain.ErrValidation("invalid value field: %q, expected SUM|COUNT|AVG|MIN|MAX(column)", field)
		}
	}
	dimension := q.Dimension()
	if dimension != "" && !identifierPattern.MatchString(dimension) {
		return nil, domain.ErrValidation("invalid dimension field: %q", dimension)
	}

	if q.ChartType != "" && !chartTypes[strings.ToLower(q.ChartType)] {
		return nil, domain.ErrValidation("chart_type must be one of line, bar, pie, scatter, got %q", q.ChartType)
	}

	filters, err := validateFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		DatasetID:      q.DatasetID,
		LabelFields:    append([]string(nil), q.LabelFields...),
		ValueFields:    append([]string(nil), q.ValueFields...),
		DimensionField: dimension,
		Filters:        filters,
	}

	if q.Limit != nil {
		if *q.Limit <= 0 {
			return nil, domain.ErrValidation("limit must be a positive integer, got %d", *q.Limit)
		}
		limit := *q.Limit
		plan.Limit = &limit
	}
	if q.SortOrder != nil {
		switch strings.ToLower(*q.SortOrder) {
		case "asc":
			plan.SortOrder = "ASC"
		case "desc":
			plan.SortOrder = "DESC"
		default:
			return nil, domain.ErrValidation("sort_order must be asc or desc, got %q", *q.SortOrder)
		}
	}

	switch {
	case dimension != "":
		plan.Variant = DimensionPivot
	case len(plan.ValueFields) == 1:
		plan.Variant = SingleSeries
	default:
		plan.Variant = MultiSeries
	}
	return plan, nil
}

// validateFilters returns the filters sorted by column so the generated SQL is stable.
func validateFilters(items map[string]models.FilterItem) ([]Filter, error) {
	columns := make([]string, 0, len(items))
	for column := range items {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	filters := make([]Filter, 0, len(columns))
	for _, column := range columns {
		item := items[column]
		if !identifierPattern.MatchString(column) {
			return nil, domain.ErrValidation("invalid filter column: %q", column)
		}
		op := strings.ToLower(strings.TrimSpace(item.Operator))
		if !allowedOperators[op] {
			return nil, domain.ErrValidation("invalid operator %q for filter %s", item.Operator, column)
		}

		if op == OpBetween {
			start, end, err := validateRange(column, item.Value)
			if err != nil {
				return nil, err
			}
			filters = append(filters, Filter{Column: column, Operator: op, Values: []any{start, end}})
			continue
		}

		if item.Value.IsList() {
			return nil, domain.ErrValidation("filter %s: operator %s takes a single value", column, op)
		}
		if strings.TrimSpace(item.Value.Scalar) == "" {
			return nil, domain.ErrValidation("filter %s: value must not be empty", column)
		}
		filters = append(filters, Filter{Column: column, Operator: op, Values: []any{item.Value.Scalar}})
	}
	return filters, nil
}

func validateRange(column string, value models.FilterValue) (string, string, error) {
	if !value.IsList() || len(value.List) != 2 {
		return "", "", domain.ErrValidation("filter %s: between requires a list of two timestamps", column)
	}
	start, err := ParseTimestamp(value.List[0])
	if err != nil {
		return "", "", domain.ErrValidation("filter %s: invalid start timestamp %q", column, value.List[0])
	}
	end, err := ParseTimestamp(value.List[1])
	if err != nil {
		return "", "", domain.ErrValidation("filter %s: invalid end timestamp %q", column, value.List[1])
	}
	if start.After(end) {
		return "", "", domain.ErrValidation("filter %s: start date must be before end date", column)
	}
	return value.List[0], value.List[1], nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 dates and date-times, with or without an
// offset. A trailing Z means UTC; values without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp: %q", s)
}
