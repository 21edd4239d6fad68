package flashcard

import (
	"context"
	"fmt"

	"github.com/habitutor/habitutor-api/internal/store"
)

// Sampler draws the question set of a new attempt.
type Sampler interface {
	// Sample returns n distinct eligible question IDs, or ErrNotEnoughContent
	// when fewer than the configured minimum pool are available.
	Sample(ctx context.Context, questions store.QuestionStore, n int) ([]int64, error)
}

// randomSampler relies on the store's random ordering.
type randomSampler struct {
	minPool int
}

var _ Sampler = (*randomSampler)(nil)

// NewRandomSampler creates a Sampler requiring at least minPool eligible questions.
func NewRandomSampler(minPool int) Sampler {
	return &randomSampler{minPool: minPool}
}

// Sample implements Sampler.
func (s *randomSampler) Sample(ctx context.Context, questions store.QuestionStore, n int) ([]int64, error) {
	limit := n
	if s.minPool > limit {
		limit = s.minPool
	}

	ids, err := questions.SampleFlashcardIDs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample flashcard questions: %w", err)
	}

	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) < s.minPool || len(unique) < n {
		return nil, ErrNotEnoughContent
	}
	return unique[:n], nil
}
