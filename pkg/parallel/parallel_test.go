package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	out := make([]int32, 1000)
	err := For(context.Background(), len(out), 4, func(i int) error {
		atomic.AddInt32(&out[i], 1)
		return nil
	})
	require.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}

func TestForStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := For(context.Background(), 100, 2, func(i int) error {
		if i == 42 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEmptyAndCancelled(t *testing.T) {
	require.NoError(t, For(context.Background(), 0, 4, func(int) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := For(ctx, 10, 1, func(int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
