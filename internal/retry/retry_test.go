package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskwire/taskwire/internal/retry"
)

func TestValue(t *testing.T) {
	ctx := context.Background()

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		got, err := retry.Value(ctx, 3, time.Millisecond, func(ctx context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		got, err := retry.Value(ctx, 3, time.Millisecond, func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("not visible yet")
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts budget and returns last error", func(t *testing.T) {
		wantErr := errors.New("still missing")
		calls := 0
		_, err := retry.Value(ctx, 3, time.Millisecond, func(ctx context.Context) (int, error) {
			calls++
			return 0, wantErr
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("rejects zero attempts", func(t *testing.T) {
		_, err := retry.Value(ctx, 0, time.Millisecond, func(ctx context.Context) (int, error) {
			return 0, nil
		})
		require.Error(t, err)
	})

	t.Run("honors context cancellation between attempts", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		calls := 0
		_, err := retry.Value(cancelCtx, 5, 50*time.Millisecond, func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("fail")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestDo(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
