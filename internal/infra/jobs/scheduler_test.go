package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context) (int, error)

func (f completerFunc) CompleteFinishedBookings(ctx context.Context) (int, error) {
	return f(ctx)
}

func TestNewScheduler(t *testing.T) {
	noop := completerFunc(func(context.Context) (int, error) { return 0, nil })

	_, err := NewScheduler(nil, Config{})
	assert.Error(t, err)

	_, err = NewScheduler(noop, Config{Spec: "every tuesday"})
	assert.Error(t, err)

	s, err := NewScheduler(noop, Config{})
	require.NoError(t, err)
	s.Start()
	defer s.Stop(context.Background())
	next := s.NextRun()
	assert.Equal(t, 0, next.UTC().Hour())
	assert.Equal(t, 5, next.UTC().Minute())
	assert.True(t, next.After(time.Now()))
}

func TestRunOnce(t *testing.T) {
	var sawDeadline bool
	s, err := NewScheduler(completerFunc(func(ctx context.Context) (int, error) {
		_, sawDeadline = ctx.Deadline()
		return 3, nil
	}), Config{Spec: "@hourly", Timeout: time.Second})
	require.NoError(t, err)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, sawDeadline)

	failing, err := NewScheduler(completerFunc(func(context.Context) (int, error) {
		return 1, errors.New("store down")
	}), Config{})
	require.NoError(t, err)
	n, err = failing.RunOnce(context.Background())
	assert.EqualError(t, err, "store down")
	assert.Equal(t, 1, n)
}
