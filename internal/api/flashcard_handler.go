package api

import (
	"log/slog"
	"net/http"

	"github.com/habitutor/habitutor-api/internal/api/shared"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/service/flashcard"
	"github.com/jinzhu/copier"
)

// FlashcardHandler serves the daily flashcard session endpoints.
type FlashcardHandler struct {
	service flashcard.Service
	logger  *slog.Logger
}

// NewFlashcardHandler creates a FlashcardHandler.
func NewFlashcardHandler(service flashcard.Service, logger *slog.Logger) *FlashcardHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardHandler{
		service: service,
		logger:  logger.With(slog.String("component", "flashcard_handler")),
	}
}

// Start handles POST /flashcard/start.
func (h *FlashcardHandler) Start(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	res, err := h.service.Start(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start flashcard session")
		return
	}

	var out StartResponse
	if !h.mapDTO(w, r, &out, res) {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, out)
}

// Get handles GET /flashcard.
func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load flashcard session")
		return
	}

	var out SessionResponse
	if !h.mapDTO(w, r, &out, view) {
		return
	}
	if out.Questions == nil {
		out.Questions = []QuestionResponse{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Save handles POST /flashcard.
func (h *FlashcardHandler) Save(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req SaveAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.Save(r.Context(), p, req.QuestionID, req.AnswerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save answer")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SaveAnswerResponse{
		IsCorrect:       res.IsCorrect,
		CorrectAnswerID: res.CorrectAnswerID,
		UserAnswerID:    res.UserAnswerID,
	})
}

// Submit handles POST /flashcard/submit.
func (h *FlashcardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	res, err := h.service.Submit(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit flashcard session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitResponse{
		Message:     "Flashcard session submitted",
		SubmittedAt: res.SubmittedAt,
		Streak:      res.Streak,
	})
}

// Result handles GET /flashcard/result with an optional attemptId query parameter.
func (h *FlashcardHandler) Result(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	attemptID, err := optionalQueryID(r, "attemptId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.service.Result(r.Context(), p, attemptID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load flashcard result")
		return
	}

	var out ResultResponse
	if !h.mapDTO(w, r, &out, res) {
		return
	}
	if out.Questions == nil {
		out.Questions = []QuestionResultResponse{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// History handles GET /flashcard/history.
func (h *FlashcardHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	entries, err := h.service.History(r.Context(), p)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load flashcard history")
		return
	}

	out := make([]HistoryItemResponse, 0, len(entries))
	if !h.mapDTO(w, r, &out, entries) {
		return
	}
	if out == nil {
		out = []HistoryItemResponse{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// mapDTO copies a service result into its response type by field name.
func (h *FlashcardHandler) mapDTO(w http.ResponseWriter, r *http.Request, dst, src interface{}) bool {
	if err := copier.Copy(dst, src); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to map response",
			slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred", err)
		return false
	}
	return true
}
