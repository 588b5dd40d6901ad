package chartquery

import (
	"fmt"
	"strings"

	"analytics/internal/api/models"
	"analytics/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

// ValueAlias is the positional result column of the i-th aggregate.
func ValueAlias(i int) string {
	return fmt.Sprintf("value_%d", i)
}

// Build renders plan against ds as a SELECT with `?` placeholders. Executors
// rebind the placeholders to their driver's format.
func Build(plan *Plan, ds models.Dataset) (string, []any, error) {
	if plan == nil {
		return "", nil, domain.ErrValidation("missing query plan")
	}
	if !identifierPattern.MatchString(ds.SchemaName) || !identifierPattern.MatchString(ds.Table) {
		return "", nil, domain.ErrValidation("dataset %d has an invalid schema or table name", ds.ID)
	}

	groupBy := append([]string(nil), plan.LabelFields...)
	if plan.DimensionField != "" {
		groupBy = append(groupBy, plan.DimensionField)
	}
	columns := append([]string(nil), groupBy...)
	for i, expr := range plan.ValueFields {
		columns = append(columns, fmt.Sprintf("%s AS %s", expr, ValueAlias(i)))
	}

	builder := sq.Select(columns...).
		From(ds.QualifiedName()).
		PlaceholderFormat(sq.Question)

	for _, f := range plan.Filters {
		if f.Operator == OpBetween {
			builder = builder.Where(f.Column+" BETWEEN ? AND ?", f.Values...)
			continue
		}
		builder = builder.Where(fmt.Sprintf("%s %s ?", f.Column, strings.ToUpper(f.Operator)), f.Values...)
	}

	builder = builder.GroupBy(groupBy...)
	if plan.SortOrder != "" {
		builder = builder.OrderBy(ValueAlias(0) + " " + plan.SortOrder)
	}
	if plan.Limit != nil {
		builder = builder.Limit(uint64(*plan.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build chart query: %w", err)
	}
	return query, args, nil
}
