package nlsql

import (
	"fmt"
	"strings"

	"analytics/internal/api/models"
)

// ResponseSchema is the JSON schema handed to models that support constrained output.
var ResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"sql_query":            map[string]any{"type": "string"},
		"explanation":          map[string]any{"type": "string"},
		"chart_title":          map[string]any{"type": "string"},
		"suggested_chart_type": map[string]any{"type": "string"},
		"recommendation": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"columns": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"display_name": map[string]any{"type": "string"},
					"description":  map[string]any{"type": "string"},
					"type":         map[string]any{"type": "string"},
				},
			},
		},
	},
	"required": []string{"sql_query", "explanation", "chart_title", "suggested_chart_type", "recommendation", "columns"},
}

// describeTables lists the groups and tables a role may query.
func describeTables(groups []models.TableGroup) string {
	if len(groups) == 0 {
		return "You are not allowed to query any table."
	}
	var b strings.Builder
	b.WriteString("Available tables:\n\n")
	for _, group := range groups {
		fmt.Fprintf(&b, "Group %s:\n", capitalize(group.GroupName))
		for _, table := range group.Tables {
			if table.Description == "" {
				fmt.Fprintf(&b, "- %s\n", table.Name)
				continue
			}
			fmt.Fprintf(&b, "- %s (%s)\n", table.Name, table.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// BuildPrompt renders the role-scoped instruction for one question. Only the
// groups granted to role are listed.
func BuildPrompt(question, role string, groups []models.TableGroup) string {
	var b strings.Builder
	b.WriteString("Your task:\n")
	b.WriteString("1. Decide whether the question asks for an analysis of the data in the tables listed below.\n")
	b.WriteString("2. If it does, translate it into a single ClickHouse-compatible SELECT statement and describe the result.\n")
	b.WriteString("3. If it does not, or if it needs tables that are not listed, answer briefly without SQL.\n\n")
	fmt.Fprintf(&b, "You may only use the following tables for role %s:\n", role)
	b.WriteString(describeTables(groups))
	fmt.Fprintf(&b, "\nQuestion: %q\n\n", question)
	b.WriteString(`Answer with JSON only, using this format when the question is an analysis request:
{
  "sql_query": "the complete SQL statement",
  "explanation": "what the query computes",
  "chart_title": "a title describing the analysis",
  "suggested_chart_type": "one of Line Chart, Bar Chart, Pie Chart, Scatter Plot, Box Plot",
  "recommendation": ["follow-up question 1", "follow-up question 2", "follow-up question 3"],
  "columns": {
    "column1": {"display_name": "label of the category column", "description": "what column1 holds", "type": "numeric/categorical/date"},
    "column2": {"display_name": "label of the measure column", "description": "what column2 holds", "type": "numeric"}
  }
}
and this format otherwise:
{"sql_query": "", "explanation": "a short answer", "chart_title": "", "suggested_chart_type": "", "recommendation": [], "columns": {}}

Rules:
- The JSON must be valid.
- Column keys must match the column names returned by the SQL query.
- Use ClickHouse syntax. created_at columns are DateTime. Every non-aggregated column in SELECT must appear in GROUP BY, or be wrapped in any(), max() or min().
- Do not use CTEs (WITH), subqueries, UNION or SQL comments. Use explicit JOIN instead of comma-separated tables.
- column2 must be a numeric measure, never an id. column1 may be a time or a category column.
- Pick suggested_chart_type from the shape of the expected result.
`)
	return b.String()
}
