// Package nlsql turns a free-text question into a role-checked SQL statement
// by way of a generative model.
package nlsql

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"analytics/internal/api/models"
	"analytics/internal/domain"

	"github.com/rs/zerolog"
)

const (
	LineChart   = "Line Chart"
	BarChart    = "Bar Chart"
	PieChart    = "Pie Chart"
	ScatterPlot = "Scatter Plot"
	BoxPlot     = "Box Plot"
)

var chartTypes = map[string]bool{
	LineChart:   true,
	BarChart:    true,
	PieChart:    true,
	ScatterPlot: true,
	BoxPlot:     true,
}

// NormalizeChartType maps anything outside the supported set to Bar Chart.
func NormalizeChartType(t string) string {
	if chartTypes[t] {
		return t
	}
	return BarChart
}

// Generator is the generative model: one prompt in, raw text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RoleDirectory resolves roles and the tables they are granted.
type RoleDirectory interface {
	RoleOf(username string) (string, error)
	GroupsFor(role string) ([]models.TableGroup, error)
	AllowedTables(role string) ([]string, error)
}

type ColumnMeta struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Translation is the parsed model answer. SQLQuery is empty when the question
// was out of scope; otherwise it already passed the permission gate.
type Translation struct {
	Role               string                `json:"-"`
	SQLQuery           string                `json:"sql_query"`
	Explanation        string                `json:"explanation"`
	ChartTitle         string                `json:"chart_title"`
	SuggestedChartType string                `json:"suggested_chart_type"`
	Recommendations    []string              `json:"recommendation"`
	Columns            map[string]ColumnMeta `json:"columns"`
}

// DisplayNames maps result columns to their display names, skipping blanks.
func (t *Translation) DisplayNames() map[string]string {
	names := make(map[string]string, len(t.Columns))
	for col, meta := range t.Columns {
		if meta.DisplayName != "" {
			names[col] = meta.DisplayName
		}
	}
	return names
}

type Translator struct {
	generator Generator
	roles     RoleDirectory
	logger    zerolog.Logger
}

func NewTranslator(generator Generator, roles RoleDirectory, logger zerolog.Logger) *Translator {
	return &Translator{generator: generator, roles: roles, logger: logger}
}

// Translate asks the model for SQL answering question on behalf of username.
// Model and parse failures are *domain.TranslationError; a statement touching
// tables outside the user's role is *domain.PermissionDeniedError.
func (slf *Translator) Translate(ctx context.Context, question, username string) (*Translation, error) {
	role, err := slf.roles.RoleOf(username)
	if err != nil {
		return nil, err
	}
	groups, err := slf.roles.GroupsFor(role)
	if err != nil {
		return nil, err
	}

	raw, err := slf.generator.Generate(ctx, BuildPrompt(question, role, groups))
	if err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Model call failed")
		return nil, &domain.TranslationError{Message: "could not translate question to SQL", Err: err}
	}

	translation, err := ParseTranslation(raw)
	if err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Model answer is not valid JSON")
		return nil, err
	}
	translation.Role = role

	if translation.SQLQuery != "" {
		allowed, err := slf.roles.AllowedTables(role)
		if err != nil {
			return nil, err
		}
		if err := CheckAccess(translation.SQLQuery, role, allowed); err != nil {
			slf.logger.Warn().Str("username", username).Str("role", role).Err(err).Msg("Generated SQL rejected by permission gate")
			return nil, err
		}
	}
	return translation, nil
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ParseTranslation decodes a model answer. Markdown code fences around the
// JSON are tolerated. Missing keys read as empty.
func ParseTranslation(raw string) (*Translation, error) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if text == "" {
		return nil, &domain.TranslationError{Message: "model returned an empty answer"}
	}

	var t Translation
	if err := json.Unmarshal([]byte(text), &t); err != nil {
		return nil, &domain.TranslationError{Message: "model answer is not valid JSON", Err: err}
	}

	t.SQLQuery = strings.TrimSpace(t.SQLQuery)
	t.SuggestedChartType = NormalizeChartType(t.SuggestedChartType)
	if t.Recommendations == nil {
		t.Recommendations = []string{}
	}
	if t.Columns == nil {
		t.Columns = map[string]ColumnMeta{}
	}
	return &t, nil
}
