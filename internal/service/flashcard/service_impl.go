package flashcard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/events"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*flashcardService)(nil)

type flashcardService struct {
	transactor store.Transactor
	users      store.UserStore
	attempts   store.AttemptStore
	slots      store.SlotStore
	questions  store.QuestionStore
	sampler    Sampler
	emitter    events.EventEmitter
	cfg        Config
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes a Service built by NewService.
type Option func(*flashcardService)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *flashcardService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSampler replaces the question sampler.
func WithSampler(sampler Sampler) Option {
	return func(s *flashcardService) {
		if sampler != nil {
			s.sampler = sampler
		}
	}
}

// WithEmitter publishes lifecycle events to emitter once the change is committed.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(s *flashcardService) {
		if emitter != nil {
			s.emitter = emitter
		}
	}
}

// NewService creates a flashcard Service.
// It returns an error if any required dependency is nil or cfg is invalid.
func NewService(
	transactor store.Transactor,
	users store.UserStore,
	attempts store.AttemptStore,
	slots store.SlotStore,
	questions store.QuestionStore,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) (Service, error) {
	if transactor == nil {
		return nil, NewServiceError("new", "transactor cannot be nil", nil)
	}
	if users == nil {
		return nil, NewServiceError("new", "users cannot be nil", nil)
	}
	if attempts == nil {
		return nil, NewServiceError("new", "attempts cannot be nil", nil)
	}
	if slots == nil {
		return nil, NewServiceError("new", "slots cannot be nil", nil)
	}
	if questions == nil {
		return nil, NewServiceError("new", "questions cannot be nil", nil)
	}
	if err := cfg.validate(); err != nil {
		return nil, NewServiceError("new", "invalid config", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &flashcardService{
		transactor: transactor,
		users:      users,
		attempts:   attempts,
		slots:      slots,
		questions:  questions,
		sampler:    NewRandomSampler(cfg.MinPool),
		emitter:    events.NopEmitter{},
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "flashcard_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *flashcardService) clock() (now, today time.Time) {
	now = s.now()
	return now, domain.DayStartIn(now, s.cfg.Location)
}

// Start implements Service.Start.
func (s *flashcardService) Start(ctx context.Context, p domain.Principal) (*StartResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now, today := s.clock()

	var result *StartResult
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		attempts := s.attempts.WithTx(tx)
		slots := s.slots.WithTx(tx)
		questions := s.questions.WithTx(tx)

		if _, err := users.GetByIDForUpdate(ctx, p.UserID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}

		latest, err := latestAttempt(ctx, attempts, p)
		if err != nil {
			return err
		}
		if latest != nil && latest.StartedSince(today) {
			if !p.IsPremium {
				return ErrAlreadyStartedToday
			}
			if !latest.IsSubmitted() {
				return ErrSessionInProgress
			}
		}

		ids, err := s.sampler.Sample(ctx, questions, s.cfg.QuestionsPerSession)
		if err != nil {
			return err
		}

		attempt, err := domain.NewAttempt(p.UserID, now, s.cfg.SessionDuration, s.cfg.Location)
		if err != nil {
			return fmt.Errorf("failed to build attempt: %w", err)
		}
		if err := attempts.Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		if err := slots.CreateBatch(ctx, domain.NewSlots(attempt.ID, attempt.Date, ids)); err != nil {
			return fmt.Errorf("failed to assign questions: %w", err)
		}

		result = &StartResult{
			AttemptID:   attempt.ID,
			StartedAt:   attempt.StartedAt,
			Deadline:    attempt.Deadline,
			QuestionIDs: ids,
		}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			log.Info("flashcard session not started",
				slog.String("user_id", p.UserID.String()),
				slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to start flashcard session",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return nil, NewServiceError("start", "failed to start session", err)
	}

	log.Info("flashcard session started",
		slog.String("user_id", p.UserID.String()),
		slog.Int64("attempt_id", result.AttemptID),
		slog.Time("deadline", result.Deadline))

	s.emit(ctx, events.TypeSessionStarted, events.SessionStartedPayload{
		UserID:        p.UserID,
		AttemptID:     result.AttemptID,
		QuestionCount: len(result.QuestionIDs),
		Premium:       p.IsPremium,
	})
	return result, nil
}

// Get implements Service.Get.
func (s *flashcardService) Get(ctx context.Context, p domain.Principal) (*SessionView, error) {
	_, today := s.clock()

	latest, err := latestAttempt(ctx, s.attempts, p)
	if err != nil {
		return nil, NewServiceError("get", "failed to load latest attempt", err)
	}

	view := &SessionView{Status: domain.StatusOn(latest, today), Questions: []QuestionView{}}
	if view.Status == domain.SessionNotStarted {
		return view, nil
	}
	view.Attempt = &AttemptSummary{
		ID:          latest.ID,
		StartedAt:   latest.StartedAt,
		Deadline:    latest.Deadline,
		SubmittedAt: latest.SubmittedAt,
	}
	if view.Status == domain.SessionSubmitted {
		return view, nil
	}

	slots, err := s.slots.ListByAttempt(ctx, latest.ID)
	if err != nil {
		return nil, NewServiceError("get", "failed to load question slots", err)
	}
	pending := make([]int64, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsAnswered() {
			pending = append(pending, slot.QuestionID)
		}
	}
	if len(pending) == 0 {
		return view, nil
	}

	questions, options, err := s.loadContent(ctx, pending)
	if err != nil {
		return nil, NewServiceError("get", "failed to load question content", err)
	}
	for _, qid := range pending {
		q, ok := questions[qid]
		if !ok {
			continue
		}
		view.Questions = append(view.Questions, QuestionView{
			ID:      q.ID,
			Content: q.Content,
			Answers: answerViews(options[qid]),
		})
	}
	return view, nil
}

// Save implements Service.Save.
func (s *flashcardService) Save(
	ctx context.Context,
	p domain.Principal,
	questionID, answerID int64,
) (*SaveResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now, today := s.clock()

	slot, attempt, err := s.slots.FindForQuestion(ctx, p.UserID, questionID, today)
	if err != nil {
		if errors.Is(err, store.ErrSlotNotFound) {
			return nil, ErrQuestionNotInSession
		}
		return nil, NewServiceError("save", "failed to find question slot", err)
	}
	if !attempt.AcceptsAt(now, s.cfg.GracePeriod) {
		log.Debug("answer rejected after deadline",
			slog.String("user_id", p.UserID.String()),
			slog.Int64("attempt_id", attempt.ID),
			slog.Time("deadline", attempt.Deadline))
		return nil, ErrSessionExpired
	}

	options, err := s.questions.GetAnswerOptions(ctx, []int64{questionID})
	if err != nil {
		return nil, NewServiceError("save", "failed to load answer options", err)
	}
	chosen, ok := domain.FindOption(options, answerID)
	if !ok {
		return nil, ErrAnswerNotFound
	}
	correct, ok := domain.CorrectOption(options)
	if !ok {
		log.Warn("question has no correct answer option",
			slog.Int64("question_id", questionID),
			slog.Int64("attempt_id", attempt.ID))
	}

	if err := s.slots.SaveAnswer(ctx, *slot, answerID, now); err != nil {
		if errors.Is(err, store.ErrSlotNotFound) {
			return nil, ErrQuestionNotInSession
		}
		return nil, NewServiceError("save", "failed to save answer", err)
	}

	log.Debug("flashcard answer saved",
		slog.String("user_id", p.UserID.String()),
		slog.Int64("attempt_id", attempt.ID),
		slog.Int64("question_id", questionID),
		slog.Bool("correct", chosen.IsCorrect))

	s.emit(ctx, events.TypeAnswerSaved, events.AnswerSavedPayload{
		UserID:     p.UserID,
		AttemptID:  attempt.ID,
		QuestionID: questionID,
		Correct:    chosen.IsCorrect,
	})

	return &SaveResult{
		IsCorrect:       chosen.IsCorrect,
		CorrectAnswerID: correct.ID,
		UserAnswerID:    answerID,
	}, nil
}

// Submit implements Service.Submit.
func (s *flashcardService) Submit(ctx context.Context, p domain.Principal) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now, today := s.clock()

	var result *SubmitResult
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		attempts := s.attempts.WithTx(tx)

		user, err := users.GetByIDForUpdate(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}

		latest, err := latestAttempt(ctx, attempts, p)
		if err != nil {
			return err
		}
		if latest == nil || !latest.StartedSince(today) {
			return ErrAttemptNotFound
		}
		if latest.IsSubmitted() {
			return ErrAlreadySubmitted
		}
		if !latest.AcceptsAt(now, s.cfg.GracePeriod) {
			return ErrSessionExpired
		}

		if err := attempts.MarkSubmitted(ctx, latest.ID, now); err != nil {
			if errors.Is(err, store.ErrAttemptNotFound) {
				return ErrAlreadySubmitted
			}
			return fmt.Errorf("failed to mark attempt submitted: %w", err)
		}

		incremented := user.RecordFlashcardCompletion(now, today)
		if incremented {
			err := users.UpdateFlashcardStreak(ctx, user.ID, user.FlashcardStreak, *user.LastCompletedFlashcardAt)
			if err != nil {
				return fmt.Errorf("failed to update streak: %w", err)
			}
		}

		result = &SubmitResult{
			AttemptID:         latest.ID,
			SubmittedAt:       now,
			Streak:            user.FlashcardStreak,
			StreakIncremented: incremented,
		}
		return nil
	})
	if err != nil {
		if isBusinessError(err) {
			log.Info("flashcard session not submitted",
				slog.String("user_id", p.UserID.String()),
				slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to submit flashcard session",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return nil, NewServiceError("submit", "failed to submit session", err)
	}

	log.Info("flashcard session submitted",
		slog.String("user_id", p.UserID.String()),
		slog.Int64("attempt_id", result.AttemptID),
		slog.Int("streak", result.Streak),
		slog.Bool("streak_incremented", result.StreakIncremented))

	s.emit(ctx, events.TypeSessionSubmitted, events.SessionSubmittedPayload{
		UserID:            p.UserID,
		AttemptID:         result.AttemptID,
		Streak:            result.Streak,
		StreakIncremented: result.StreakIncremented,
	})
	return result, nil
}

// Result implements Service.Result.
func (s *flashcardService) Result(
	ctx context.Context,
	p domain.Principal,
	attemptID *int64,
) (*AttemptResult, error) {
	var (
		attempt *domain.Attempt
		err     error
	)
	if attemptID != nil {
		attempt, err = s.attempts.GetByID(ctx, p.UserID, *attemptID)
	} else {
		attempt, err = s.attempts.GetLatest(ctx, p.UserID)
	}
	if err != nil {
		if errors.Is(err, store.ErrAttemptNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, NewServiceError("result", "failed to load attempt", err)
	}

	slots, err := s.slots.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, NewServiceError("result", "failed to load question slots", err)
	}

	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.QuestionID)
	}
	questions, options, err := s.loadContent(ctx, ids)
	if err != nil {
		return nil, NewServiceError("result", "failed to load question content", err)
	}

	var all []domain.AnswerOption
	for _, opts := range options {
		all = append(all, opts...)
	}
	correctByQuestion := domain.CorrectAnswerIndex(all)

	result := &AttemptResult{
		AttemptID:           attempt.ID,
		StartedAt:           attempt.StartedAt,
		Deadline:            attempt.Deadline,
		SubmittedAt:         attempt.SubmittedAt,
		CorrectAnswersCount: domain.CountCorrect(slots, correctByQuestion),
		TotalQuestions:      len(slots),
		Questions:           make([]QuestionResult, 0, len(slots)),
	}
	for _, slot := range slots {
		qr := QuestionResult{
			QuestionID:       slot.QuestionID,
			SelectedAnswerID: slot.SelectedAnswerID,
			CorrectAnswerID:  correctByQuestion[slot.QuestionID],
			IsCorrect:        domain.IsSlotCorrect(slot, correctByQuestion),
			Answers:          answerViews(options[slot.QuestionID]),
		}
		if q, ok := questions[slot.QuestionID]; ok {
			qr.Content = q.Content
		}
		result.Questions = append(result.Questions, qr)
	}
	return result, nil
}

// History implements Service.History.
func (s *flashcardService) History(ctx context.Context, p domain.Principal) ([]HistoryEntry, error) {
	if !p.IsPremium {
		return nil, ErrPremiumRequired
	}

	attempts, err := s.attempts.ListByUser(ctx, p.UserID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, NewServiceError("history", "failed to list attempts", err)
	}

	entries := make([]HistoryEntry, 0, len(attempts))
	for _, a := range attempts {
		entries = append(entries, HistoryEntry{ID: a.ID, StartedAt: a.StartedAt, SubmittedAt: a.SubmittedAt})
	}
	return entries, nil
}

// loadContent fetches questions and their options keyed by question ID.
func (s *flashcardService) loadContent(
	ctx context.Context,
	ids []int64,
) (map[int64]domain.Question, map[int64][]domain.AnswerOption, error) {
	questions := make(map[int64]domain.Question, len(ids))
	options := make(map[int64][]domain.AnswerOption, len(ids))
	if len(ids) == 0 {
		return questions, options, nil
	}

	qs, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, q := range qs {
		questions[q.ID] = q
	}

	opts, err := s.questions.GetAnswerOptions(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range opts {
		options[o.QuestionID] = append(options[o.QuestionID], o)
	}
	return questions, options, nil
}

// emit publishes an event. Failures are logged and never reach the caller.
func (s *flashcardService) emit(ctx context.Context, eventType string, payload interface{}) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit flashcard event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

// latestAttempt returns the user's latest attempt or nil if there is none.
func latestAttempt(ctx context.Context, attempts store.AttemptStore, p domain.Principal) (*domain.Attempt, error) {
	latest, err := attempts.GetLatest(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAttemptNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest attempt: %w", err)
	}
	return latest, nil
}

func answerViews(options []domain.AnswerOption) []AnswerView {
	views := make([]AnswerView, 0, len(options))
	for _, o := range options {
		views = append(views, AnswerView{ID: o.ID, Code: o.Code, Content: o.Content})
	}
	return views
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		ErrAlreadyStartedToday,
		ErrSessionInProgress,
		ErrAlreadySubmitted,
		ErrSessionExpired,
		ErrNotEnoughContent,
		ErrAttemptNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
