package flashcard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/events"
	"github.com/habitutor/habitutor-api/internal/store"
)

// memDB is an in-memory stand-in for the relational store shared by the fake stores.
type memDB struct {
	users      map[uuid.UUID]domain.User
	attempts   []domain.Attempt
	slots      []domain.Slot
	questions  []domain.Question
	options    []domain.AnswerOption
	nextID     int64
	createErr  error
	lockedUser []uuid.UUID
}

func newMemDB() *memDB {
	return &memDB{users: make(map[uuid.UUID]domain.User), nextID: 1}
}

type memSnapshot struct {
	users    map[uuid.UUID]domain.User
	attempts []domain.Attempt
	slots    []domain.Slot
	nextID   int64
}

func (db *memDB) snapshot() memSnapshot {
	users := make(map[uuid.UUID]domain.User, len(db.users))
	for k, v := range db.users {
		users[k] = v
	}
	return memSnapshot{
		users:    users,
		attempts: append([]domain.Attempt(nil), db.attempts...),
		slots:    append([]domain.Slot(nil), db.slots...),
		nextID:   db.nextID,
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.users = s.users
	db.attempts = s.attempts
	db.slots = s.slots
	db.nextID = s.nextID
}

func (db *memDB) addUser(premium bool) domain.Principal {
	id := uuid.New()
	u := domain.User{ID: id, Email: id.String() + "@example.com"}
	db.users[id] = u
	return domain.Principal{UserID: id, IsPremium: premium}
}

// addQuestions seeds n eligible questions. Option A is correct, option B is not.
func (db *memDB) addQuestions(n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		qid := int64(len(db.questions) + 1)
		db.questions = append(db.questions, domain.Question{
			ID:                  qid,
			Content:             json.RawMessage(fmt.Sprintf(`{"type":"doc","q":%d}`, qid)),
			IsFlashcardQuestion: true,
		})
		db.options = append(db.options,
			domain.AnswerOption{ID: qid*10 + 1, QuestionID: qid, Code: "A", Content: json.RawMessage(`"a"`), IsCorrect: true},
			domain.AnswerOption{ID: qid*10 + 2, QuestionID: qid, Code: "B", Content: json.RawMessage(`"b"`)},
		)
		ids = append(ids, qid)
	}
	return ids
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

// memTransactor restores the snapshot taken before fn when fn fails.
type memTransactor struct {
	db *memDB
}

func (t *memTransactor) RunInTx(ctx context.Context, fn store.TxFn) error {
	snap := t.db.snapshot()
	if err := fn(ctx, nil); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

type memUserStore struct{ db *memDB }

func (s *memUserStore) Create(_ context.Context, u *domain.User) error {
	s.db.users[u.ID] = *u
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.lockedUser = append(s.db.lockedUser, id)
	return s.GetByID(ctx, id)
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) UpdateFlashcardStreak(_ context.Context, id uuid.UUID, streak int, at time.Time) error {
	u, ok := s.db.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.FlashcardStreak = streak
	u.LastCompletedFlashcardAt = &at
	s.db.users[id] = u
	return nil
}

func (s *memUserStore) WithTx(*sql.Tx) store.UserStore { return s }

type memAttemptStore struct{ db *memDB }

func (s *memAttemptStore) Create(_ context.Context, a *domain.Attempt) error {
	a.ID = s.db.nextID
	s.db.nextID++
	s.db.attempts = append(s.db.attempts, *a)
	return nil
}

func (s *memAttemptStore) sorted(userID uuid.UUID) []domain.Attempt {
	var out []domain.Attempt
	for _, a := range s.db.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (s *memAttemptStore) GetLatest(_ context.Context, userID uuid.UUID) (*domain.Attempt, error) {
	all := s.sorted(userID)
	if len(all) == 0 {
		return nil, store.ErrAttemptNotFound
	}
	return &all[0], nil
}

func (s *memAttemptStore) GetByID(_ context.Context, userID uuid.UUID, id int64) (*domain.Attempt, error) {
	for _, a := range s.db.attempts {
		if a.ID == id && a.UserID == userID {
			a := a
			return &a, nil
		}
	}
	return nil, store.ErrAttemptNotFound
}

func (s *memAttemptStore) MarkSubmitted(_ context.Context, id int64, at time.Time) error {
	for i := range s.db.attempts {
		if s.db.attempts[i].ID == id && s.db.attempts[i].SubmittedAt == nil {
			s.db.attempts[i].SubmittedAt = &at
			return nil
		}
	}
	return store.ErrAttemptNotFound
}

func (s *memAttemptStore) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error) {
	all := s.sorted(userID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memAttemptStore) WithTx(*sql.Tx) store.AttemptStore { return s }

type memSlotStore struct{ db *memDB }

func (s *memSlotStore) CreateBatch(_ context.Context, slots []domain.Slot) error {
	if s.db.createErr != nil {
		return s.db.createErr
	}
	s.db.slots = append(s.db.slots, slots...)
	return nil
}

func (s *memSlotStore) FindForQuestion(
	_ context.Context,
	userID uuid.UUID,
	questionID int64,
	assignedDate time.Time,
) (*domain.Slot, *domain.Attempt, error) {
	var (
		bestSlot    *domain.Slot
		bestAttempt *domain.Attempt
	)
	for i := range s.db.slots {
		slot := s.db.slots[i]
		if slot.QuestionID != questionID || !sameDay(slot.AssignedDate, assignedDate) {
			continue
		}
		for j := range s.db.attempts {
			a := s.db.attempts[j]
			if a.ID != slot.AttemptID || a.UserID != userID {
				continue
			}
			if bestAttempt == nil || a.StartedAt.After(bestAttempt.StartedAt) {
				slot, a := slot, a
				bestSlot, bestAttempt = &slot, &a
			}
		}
	}
	if bestSlot == nil {
		return nil, nil, store.ErrSlotNotFound
	}
	return bestSlot, bestAttempt, nil
}

func (s *memSlotStore) SaveAnswer(_ context.Context, slot domain.Slot, answerID int64, at time.Time) error {
	for i := range s.db.slots {
		cur := &s.db.slots[i]
		if cur.AttemptID == slot.AttemptID && cur.QuestionID == slot.QuestionID &&
			sameDay(cur.AssignedDate, slot.AssignedDate) {
			cur.SelectedAnswerID = &answerID
			cur.AnsweredAt = &at
			return nil
		}
	}
	return store.ErrSlotNotFound
}

func (s *memSlotStore) ListByAttempt(_ context.Context, attemptID int64) ([]domain.Slot, error) {
	var out []domain.Slot
	for _, slot := range s.db.slots {
		if slot.AttemptID == attemptID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *memSlotStore) WithTx(*sql.Tx) store.SlotStore { return s }

type memQuestionStore struct {
	db       *memDB
	sampled  []int64
	failWith error
}

func (s *memQuestionStore) SampleFlashcardIDs(_ context.Context, limit int) ([]int64, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.sampled != nil {
		return s.sampled, nil
	}
	var ids []int64
	for _, q := range s.db.questions {
		if q.IsFlashcardQuestion && len(ids) < limit {
			ids = append(ids, q.ID)
		}
	}
	return ids, nil
}

func (s *memQuestionStore) GetByIDs(_ context.Context, ids []int64) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range s.db.questions {
		for _, id := range ids {
			if q.ID == id {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func (s *memQuestionStore) GetAnswerOptions(_ context.Context, ids []int64) ([]domain.AnswerOption, error) {
	var out []domain.AnswerOption
	for _, o := range s.db.options {
		for _, id := range ids {
			if o.QuestionID == id {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (s *memQuestionStore) WithTx(*sql.Tx) store.QuestionStore { return s }

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Set(t time.Time) { c.now = t }

type recordingEmitter struct {
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

var errBoom = errors.New("boom")
