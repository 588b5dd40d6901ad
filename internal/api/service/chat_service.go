package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/audit"
	"analytics/internal/domain"
	"analytics/internal/nlsql"
	"analytics/internal/render"
	"analytics/pkg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ChatService answers natural-language questions: translate, gate, execute on
// the NL warehouse, render and record in history.
type ChatService struct {
	translator  *nlsql.Translator
	runner      QueryRunner
	historyRepo *repo.HistoryRepository
	publisher   audit.Publisher
	logger      zerolog.Logger
}

func NewChatService(translator *nlsql.Translator, runner QueryRunner, historyRepo *repo.HistoryRepository, publisher audit.Publisher, logger zerolog.Logger) *ChatService {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &ChatService{
		translator:  translator,
		runner:      runner,
		historyRepo: historyRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func (slf *ChatService) Ask(ctx context.Context, username, question string) (*response.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrValidation("question must not be empty")
	}
	start := time.Now()

	translation, err := slf.translator.Translate(ctx, question, username)
	if err != nil {
		return nil, err
	}

	answer := &response.ChatAnswer{
		SQLQuery:           translation.SQLQuery,
		Explanation:        translation.Explanation,
		ChartTitle:         translation.ChartTitle,
		SuggestedChartType: translation.SuggestedChartType,
		Recommendation:     translation.Recommendations,
		Data:               []map[string]any{},
	}

	if translation.SQLQuery != "" {
		if !pkg.IsSafeSelect(translation.SQLQuery) {
			slf.logger.Warn().Str("username", username).Msg("Generated SQL is not a single SELECT")
			return nil, domain.ErrPermissionDenied("only a single SELECT statement may be executed")
		}

		queryStart := time.Now()
		result, err := slf.runner.Query(ctx, translation.SQLQuery)
		if err != nil {
			slf.logger.Error().Err(err).Str("username", username).Msg("Chat query failed")
			return nil, err
		}

		frame := render.Frame{Columns: result.Columns, Rows: result.Rows}
		answer.Data = frame.Renamed(translation.DisplayNames()).Rows
		answer.Chart = render.BuildFigure(frame, translation.SuggestedChartType, translation.ChartTitle, translation.DisplayNames())

		tables := nlsql.ExtractTables(translation.SQLQuery)
		if err := slf.publisher.Publish(ctx, audit.Event{
			Kind:       audit.KindChat,
			Username:   username,
			Tables:     tables,
			Rows:       len(result.Rows),
			DurationMs: time.Since(queryStart).Milliseconds(),
			At:         time.Now().UTC(),
		}); err != nil {
			slf.logger.Warn().Err(err).Msg("Failed to publish audit event")
		}
	}

	answer.ID = slf.record(username, question, answer, time.Since(start))
	return answer, nil
}

// record stores the answer in history. Failures are logged, the answer is
// still returned.
func (slf *ChatService) record(username, question string, answer *response.ChatAnswer, elapsed time.Duration) string {
	entry := models.QueryHistory{
		ID:            uuid.NewString(),
		Username:      username,
		Timestamp:     time.Now().UTC(),
		Question:      question,
		Explanation:   answer.Explanation,
		SQLQuery:      answer.SQLQuery,
		ChartType:     answer.SuggestedChartType,
		ChartTitle:    answer.ChartTitle,
		ExecutionTime: elapsed.Seconds(),
	}
	if data, err := json.Marshal(answer.Data); err == nil {
		entry.Data = string(data)
	}
	if answer.Chart != nil {
		if fig, err := json.Marshal(answer.Chart); err == nil {
			entry.ChartFig = string(fig)
		}
	}

	if err := slf.historyRepo.Create(&entry); err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to save query history")
		return ""
	}
	return entry.ID
}

// History returns the user's latest five answered questions.
func (slf *ChatService) History(username string) ([]models.QueryHistory, error) {
	entries, err := slf.historyRepo.Latest(username, 5)
	if err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to load query history")
		return nil, catalogError("load history", err)
	}
	return entries, nil
}
