package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/store"
)

// PostgresQuestionStore implements the store.QuestionStore interface.
// Content columns hold either rich-text JSON or legacy plain text; both are
// returned as rich-text documents.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the QuestionStore interface.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// WithTx implements store.QuestionStore.WithTx
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &PostgresQuestionStore{db: tx, logger: s.logger}
}

// SampleFlashcardIDs implements store.QuestionStore.SampleFlashcardIDs
func (s *PostgresQuestionStore) SampleFlashcardIDs(ctx context.Context, limit int) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id FROM questions
		WHERE is_flashcard_question = TRUE
		ORDER BY random()
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error("failed to sample flashcard questions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// GetByIDs implements store.QuestionStore.GetByIDs
func (s *PostgresQuestionStore) GetByIDs(ctx context.Context, ids []int64) ([]domain.Question, error) {
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, content, is_flashcard_question
		FROM questions
		WHERE id = ANY($1)
	`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		log.Error("failed to load questions",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	questions := make([]domain.Question, 0, len(ids))
	for rows.Next() {
		var q domain.Question
		var content string
		if err := rows.Scan(&q.ID, &content, &q.IsFlashcardQuestion); err != nil {
			return nil, MapError(err)
		}
		q.Content = domain.NormalizeContent(content)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return questions, nil
}

// GetAnswerOptions implements store.QuestionStore.GetAnswerOptions
func (s *PostgresQuestionStore) GetAnswerOptions(ctx context.Context, questionIDs []int64) ([]domain.AnswerOption, error) {
	if len(questionIDs) == 0 {
		return []domain.AnswerOption{}, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, question_id, code, content, is_correct
		FROM answer_options
		WHERE question_id = ANY($1)
		ORDER BY question_id, code, id
	`
	rows, err := s.db.QueryContext(ctx, query, questionIDs)
	if err != nil {
		log.Error("failed to load answer options", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	options := []domain.AnswerOption{}
	for rows.Next() {
		var o domain.AnswerOption
		var content string
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Code, &content, &o.IsCorrect); err != nil {
			return nil, MapError(err)
		}
		o.Content = domain.NormalizeContent(content)
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return options, nil
}
