package flashcard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSampler(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		minPool int
		n       int
		sampled []int64
		want    []int64
		wantErr error
	}{
		{name: "exact pool", minPool: 5, n: 5, sampled: []int64{4, 2, 9, 1, 7}, want: []int64{4, 2, 9, 1, 7}},
		{name: "truncates to n", minPool: 5, n: 3, sampled: []int64{4, 2, 9, 1, 7}, want: []int64{4, 2, 9}},
		{name: "too few", minPool: 5, n: 5, sampled: []int64{1, 2, 3, 4}, wantErr: ErrNotEnoughContent},
		{name: "duplicates do not count", minPool: 5, n: 5, sampled: []int64{1, 2, 2, 3, 4}, wantErr: ErrNotEnoughContent},
		{name: "empty", minPool: 5, n: 5, sampled: []int64{}, wantErr: ErrNotEnoughContent},
		{name: "n above pool", minPool: 2, n: 4, sampled: []int64{1, 2, 3}, wantErr: ErrNotEnoughContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qs := &memQuestionStore{db: newMemDB(), sampled: tc.sampled}
			got, err := NewRandomSampler(tc.minPool).Sample(ctx, qs, tc.n)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRandomSamplerStoreError(t *testing.T) {
	qs := &memQuestionStore{db: newMemDB(), failWith: errBoom}
	_, err := NewRandomSampler(5).Sample(context.Background(), qs, 5)
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrNotEnoughContent)
}
