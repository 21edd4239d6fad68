package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/api/shared"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/service/flashcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFlashcardService returns canned values and records the arguments it saw.
type stubFlashcardService struct {
	start   *flashcard.StartResult
	view    *flashcard.SessionView
	save    *flashcard.SaveResult
	submit  *flashcard.SubmitResult
	result  *flashcard.AttemptResult
	history []flashcard.HistoryEntry
	err     error

	gotPrincipal  domain.Principal
	gotQuestionID int64
	gotAnswerID   int64
	gotAttemptID  *int64
}

func (s *stubFlashcardService) Start(_ context.Context, p domain.Principal) (*flashcard.StartResult, error) {
	s.gotPrincipal = p
	return s.start, s.err
}

func (s *stubFlashcardService) Get(_ context.Context, p domain.Principal) (*flashcard.SessionView, error) {
	s.gotPrincipal = p
	return s.view, s.err
}

func (s *stubFlashcardService) Save(
	_ context.Context,
	p domain.Principal,
	questionID, answerID int64,
) (*flashcard.SaveResult, error) {
	s.gotPrincipal, s.gotQuestionID, s.gotAnswerID = p, questionID, answerID
	return s.save, s.err
}

func (s *stubFlashcardService) Submit(_ context.Context, p domain.Principal) (*flashcard.SubmitResult, error) {
	s.gotPrincipal = p
	return s.submit, s.err
}

func (s *stubFlashcardService) Result(
	_ context.Context,
	p domain.Principal,
	attemptID *int64,
) (*flashcard.AttemptResult, error) {
	s.gotPrincipal, s.gotAttemptID = p, attemptID
	return s.result, s.err
}

func (s *stubFlashcardService) History(_ context.Context, p domain.Principal) ([]flashcard.HistoryEntry, error) {
	s.gotPrincipal = p
	return s.history, s.err
}

var testPrincipal = domain.Principal{UserID: uuid.MustParse("7b0c3c2e-6f55-4d0e-9a55-9f7a1c1d2e3f")}

func serve(
	t *testing.T,
	handler http.HandlerFunc,
	method, target, body string,
	authenticated bool,
) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authenticated {
		req = req.WithContext(shared.WithPrincipal(req.Context(), testPrincipal))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

var (
	startedAt = time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	deadline  = startedAt.Add(10 * time.Minute)
)

func TestFlashcardHandlerStart(t *testing.T) {
	svc := &stubFlashcardService{start: &flashcard.StartResult{
		AttemptID:   42,
		StartedAt:   startedAt,
		Deadline:    deadline,
		QuestionIDs: []int64{5, 3, 9, 1, 7},
	}}
	h := NewFlashcardHandler(svc, nil)

	rec := serve(t, h.Start, http.MethodPost, "/api/flashcard/start", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"attemptId": 42,
		"startedAt": "2024-03-10T02:00:00Z",
		"deadline": "2024-03-10T02:10:00Z",
		"questionIds": [5, 3, 9, 1, 7]
	}`, rec.Body.String())
	assert.Equal(t, testPrincipal, svc.gotPrincipal)

	rec = serve(t, h.Start, http.MethodPost, "/api/flashcard/start", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFlashcardHandlerStartErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name: "free user already started", err: flashcard.ErrAlreadyStartedToday,
			status: http.StatusConflict, message: "You have already started today's flashcard session",
		},
		{
			name: "premium open session", err: flashcard.ErrSessionInProgress,
			status: http.StatusConflict, message: "Finish your existing flashcard session first",
		},
		{
			name: "not enough content", err: flashcard.ErrNotEnoughContent,
			status: http.StatusUnprocessableEntity, message: "Not enough flashcard content",
		},
		{
			name:   "infrastructure failure",
			err:    flashcard.NewServiceError("start", "failed to start session", errors.New("connection refused")),
			status: http.StatusInternalServerError, message: "Failed to start flashcard session",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFlashcardHandler(&stubFlashcardService{err: tt.err}, nil)
			rec := serve(t, h.Start, http.MethodPost, "/api/flashcard/start", "", true)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["error"])
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestFlashcardHandlerGet(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		svc := &stubFlashcardService{view: &flashcard.SessionView{Status: domain.SessionNotStarted}}
		h := NewFlashcardHandler(svc, nil)

		rec := serve(t, h.Get, http.MethodGet, "/api/flashcard", "", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"not_started","questions":[]}`, rec.Body.String())
	})

	t.Run("ongoing hides correctness", func(t *testing.T) {
		svc := &stubFlashcardService{view: &flashcard.SessionView{
			Status:  domain.SessionOngoing,
			Attempt: &flashcard.AttemptSummary{ID: 42, StartedAt: startedAt, Deadline: deadline},
			Questions: []flashcard.QuestionView{{
				ID:      3,
				Content: json.RawMessage(`{"type":"doc"}`),
				Answers: []flashcard.AnswerView{
					{ID: 31, Code: "A", Content: json.RawMessage(`"x"`)},
					{ID: 32, Code: "B", Content: json.RawMessage(`"y"`)},
				},
			}},
		}}
		h := NewFlashcardHandler(svc, nil)

		rec := serve(t, h.Get, http.MethodGet, "/api/flashcard", "", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"status": "ongoing",
			"attempt": {"id": 42, "startedAt": "2024-03-10T02:00:00Z", "deadline": "2024-03-10T02:10:00Z"},
			"questions": [{
				"id": 3,
				"content": {"type": "doc"},
				"answers": [
					{"id": 31, "code": "A", "content": "x"},
					{"id": 32, "code": "B", "content": "y"}
				]
			}]
		}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "isCorrect")
	})
}

func TestFlashcardHandlerSave(t *testing.T) {
	svc := &stubFlashcardService{save: &flashcard.SaveResult{IsCorrect: false, CorrectAnswerID: 31, UserAnswerID: 32}}
	h := NewFlashcardHandler(svc, nil)

	rec := serve(t, h.Save, http.MethodPost, "/api/flashcard", `{"questionId":3,"answerId":32}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isCorrect":false,"correctAnswerId":31,"userAnswerId":32}`, rec.Body.String())
	assert.Equal(t, int64(3), svc.gotQuestionID)
	assert.Equal(t, int64(32), svc.gotAnswerID)

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "malformed body", body: `{"questionId":`, status: http.StatusBadRequest},
		{name: "missing answer", body: `{"questionId":3}`, status: http.StatusBadRequest},
		{name: "negative question", body: `{"questionId":-3,"answerId":1}`, status: http.StatusBadRequest},
		{name: "expired", body: `{"questionId":3,"answerId":32}`, err: flashcard.ErrSessionExpired, status: http.StatusUnprocessableEntity},
		{name: "not in session", body: `{"questionId":3,"answerId":32}`, err: flashcard.ErrQuestionNotInSession, status: http.StatusNotFound},
		{name: "unknown answer", body: `{"questionId":3,"answerId":99}`, err: flashcard.ErrAnswerNotFound, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFlashcardHandler(&stubFlashcardService{err: tt.err}, nil)
			rec := serve(t, h.Save, http.MethodPost, "/api/flashcard", tt.body, true)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestFlashcardHandlerSubmit(t *testing.T) {
	submittedAt := startedAt.Add(4 * time.Minute)
	svc := &stubFlashcardService{submit: &flashcard.SubmitResult{AttemptID: 42, SubmittedAt: submittedAt, Streak: 6}}
	h := NewFlashcardHandler(svc, nil)

	rec := serve(t, h.Submit, http.MethodPost, "/api/flashcard/submit", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Flashcard session submitted",
		"submittedAt": "2024-03-10T02:04:00Z",
		"streak": 6
	}`, rec.Body.String())

	h = NewFlashcardHandler(&stubFlashcardService{err: flashcard.ErrAlreadySubmitted}, nil)
	rec = serve(t, h.Submit, http.MethodPost, "/api/flashcard/submit", "", true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFlashcardHandlerResult(t *testing.T) {
	selected := int64(32)
	submittedAt := startedAt.Add(5 * time.Minute)
	svc := &stubFlashcardService{result: &flashcard.AttemptResult{
		AttemptID:           42,
		StartedAt:           startedAt,
		Deadline:            deadline,
		SubmittedAt:         &submittedAt,
		CorrectAnswersCount: 0,
		TotalQuestions:      2,
		Questions: []flashcard.QuestionResult{
			{
				QuestionID:       3,
				Content:          json.RawMessage(`"q3"`),
				SelectedAnswerID: &selected,
				CorrectAnswerID:  31,
				Answers:          []flashcard.AnswerView{{ID: 31, Code: "A", Content: json.RawMessage(`"x"`)}},
			},
			{
				QuestionID:      4,
				Content:         json.RawMessage(`"q4"`),
				CorrectAnswerID: 41,
				Answers:         []flashcard.AnswerView{{ID: 41, Code: "A", Content: json.RawMessage(`"z"`)}},
			},
		},
	}}
	h := NewFlashcardHandler(svc, nil)

	rec := serve(t, h.Result, http.MethodGet, "/api/flashcard/result?attemptId=42", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"attemptId": 42,
		"startedAt": "2024-03-10T02:00:00Z",
		"deadline": "2024-03-10T02:10:00Z",
		"submittedAt": "2024-03-10T02:05:00Z",
		"correctAnswersCount": 0,
		"totalQuestions": 2,
		"questions": [
			{
				"questionId": 3, "content": "q3", "selectedAnswerId": 32, "correctAnswerId": 31,
				"isCorrect": false, "answers": [{"id": 31, "code": "A", "content": "x"}]
			},
			{
				"questionId": 4, "content": "q4", "selectedAnswerId": null, "correctAnswerId": 41,
				"isCorrect": false, "answers": [{"id": 41, "code": "A", "content": "z"}]
			}
		]
	}`, rec.Body.String())
	require.NotNil(t, svc.gotAttemptID)
	assert.Equal(t, int64(42), *svc.gotAttemptID)

	rec = serve(t, h.Result, http.MethodGet, "/api/flashcard/result", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.gotAttemptID)

	for _, bad := range []string{"abc", "0", "-4"} {
		rec = serve(t, h.Result, http.MethodGet, "/api/flashcard/result?attemptId="+bad, "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	h = NewFlashcardHandler(&stubFlashcardService{err: flashcard.ErrAttemptNotFound}, nil)
	rec = serve(t, h.Result, http.MethodGet, "/api/flashcard/result?attemptId=7", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlashcardHandlerHistory(t *testing.T) {
	submittedAt := startedAt.Add(5 * time.Minute)
	svc := &stubFlashcardService{history: []flashcard.HistoryEntry{
		{ID: 43, StartedAt: startedAt.Add(time.Hour)},
		{ID: 42, StartedAt: startedAt, SubmittedAt: &submittedAt},
	}}
	h := NewFlashcardHandler(svc, nil)

	rec := serve(t, h.History, http.MethodGet, "/api/flashcard/history", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"id": 43, "startedAt": "2024-03-10T03:00:00Z", "submittedAt": null},
		{"id": 42, "startedAt": "2024-03-10T02:00:00Z", "submittedAt": "2024-03-10T02:05:00Z"}
	]`, rec.Body.String())

	h = NewFlashcardHandler(&stubFlashcardService{err: flashcard.ErrPremiumRequired}, nil)
	rec = serve(t, h.History, http.MethodGet, "/api/flashcard/history", "", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	h = NewFlashcardHandler(&stubFlashcardService{history: []flashcard.HistoryEntry{}}, nil)
	rec = serve(t, h.History, http.MethodGet, "/api/flashcard/history", "", true)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
