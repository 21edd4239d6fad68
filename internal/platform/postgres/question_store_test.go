package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresQuestionStore_SampleFlashcardIDs(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresQuestionStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY random()")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)).AddRow(int64(2)).AddRow(int64(4)))

	ids, err := s.SampleFlashcardIDs(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 2, 4}, ids)
}

func TestPostgresQuestionStore_GetByIDsNormalizesContent(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresQuestionStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1)")).
		WithArgs([]int64{1, 2}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "is_flashcard_question"}).
			AddRow(int64(1), "Ibukota Indonesia?", true).
			AddRow(int64(2), `{"type":"doc","content":[]}`, true))

	qs, err := s.GetByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Contains(t, string(qs[0].Content), `"text":"Ibukota Indonesia?"`)
	assert.JSONEq(t, `{"type":"doc","content":[]}`, string(qs[1].Content))

	empty, err := s.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgresQuestionStore_GetAnswerOptions(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresQuestionStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM answer_options")).
		WithArgs([]int64{1}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "code", "content", "is_correct"}).
			AddRow(int64(10), int64(1), "A", "Jakarta", true).
			AddRow(int64(11), int64(1), "B", "Bandung", false))

	opts, err := s.GetAnswerOptions(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.True(t, opts[0].IsCorrect)
	assert.Equal(t, "B", opts[1].Code)
	assert.Contains(t, string(opts[1].Content), "Bandung")
}
