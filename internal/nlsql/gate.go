package nlsql

import (
	"regexp"
	"strings"

	"analytics/internal/api/models"
	"analytics/internal/domain"
)

// The gate is a best-effort static check over SQL text, not a parser and not a
// sandbox. Anything it cannot account for is rejected.
var (
	tableRefPattern  = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)?)`)
	keywordPattern   = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\b`)
	selectPattern    = regexp.MustCompile(`(?i)\bSELECT\b`)
	ctePattern       = regexp.MustCompile(`(?i)^\s*WITH\b`)
	fromPattern      = regexp.MustCompile(`(?i)\bFROM\b`)
	clauseEndPattern = regexp.MustCompile(`(?i)\b(?:WHERE|PREWHERE|GROUP|HAVING|ORDER|LIMIT|SETTINGS|FORMAT|QUALIFY|WINDOW|UNION)\b`)
	inTablePattern   = regexp.MustCompile(`(?i)\bIN\b\s*[^\s(]`)
	commentPattern   = regexp.MustCompile(`--|/\*|\*/|#`)
	tableFuncPattern = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)?\s*\(`)
)

// ExtractTables returns every name that follows FROM or JOIN, in order of appearance.
// Names may carry one schema qualifier.
func ExtractTables(sql string) []string {
	matches := tableRefPattern.FindAllStringSubmatch(sql, -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, strings.TrimSpace(m[1]))
	}
	return tables
}

// CheckAccess admits text for role when every referenced table is in allowed.
// The admin role is always admitted. For other roles, CTEs, subqueries,
// comments, table functions, comma joins and table references the pattern cannot read are rejected.
func CheckAccess(text, role string, allowed []string) error {
	if role == models.AdminRole {
		return nil
	}

	if commentPattern.MatchString(text) {
		return domain.ErrPermissionDenied("queries with comments are not supported")
	}
	if ctePattern.MatchString(text) {
		return domain.ErrPermissionDenied("queries with common table expressions are not supported")
	}
	if len(selectPattern.FindAllStringIndex(text, -1)) > 1 {
		return domain.ErrPermissionDenied("subqueries and unions are not supported")
	}
	if tableFuncPattern.MatchString(text) {
		return domain.ErrPermissionDenied("table functions are not supported")
	}
	if fromClauseHasComma(text) {
		return domain.ErrPermissionDenied("comma-separated table lists are not supported, use JOIN")
	}
	if inTablePattern.MatchString(text) {
		return domain.ErrPermissionDenied("IN must be followed by a parenthesized list")
	}

	tables := ExtractTables(text)
	if len(tables) != len(keywordPattern.FindAllStringIndex(text, -1)) {
		return domain.ErrPermissionDenied("query references tables that cannot be verified")
	}

	permitted := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		permitted[t] = true
	}
	for _, t := range tables {
		if !permitted[t] {
			return domain.ErrPermissionDenied("access to table %s is not allowed for role %s", t, role)
		}
	}
	return nil
}

// fromClauseHasComma reports a comma outside parentheses between the first
// FROM and the clause that ends the table list.
func fromClauseHasComma(text string) bool {
	loc := fromPattern.FindStringIndex(text)
	if loc == nil {
		return false
	}
	clause := text[loc[1]:]
	if end := clauseEndPattern.FindStringIndex(clause); end != nil {
		clause = clause[:end[0]]
	}
	depth := 0
	for _, r := range clause {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth <= 0 {
				return true
			}
		}
	}
	return false
}
