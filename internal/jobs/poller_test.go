package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressureprofile/rma-starter/internal/models"
)

func TestAwaitSucceedsAfterRunning(t *testing.T) {
	calls := 0
	check := func(ctx context.Context) (models.JobStatus, error) {
		calls++
		if calls < 3 {
			return models.JobInProgress, nil
		}
		return models.JobSucceeded, nil
	}

	status, err := Await(context.Background(), check, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, status)
	assert.Equal(t, 3, calls)
}

func TestAwaitStopsOnFailedStatus(t *testing.T) {
	calls := 0
	check := func(ctx context.Context) (models.JobStatus, error) {
		calls++
		return models.JobFailed, nil
	}

	status, err := Await(context.Background(), check, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, status)
	assert.Equal(t, 1, calls)
}

func TestAwaitExhaustionReturnsLastStatus(t *testing.T) {
	calls := 0
	check := func(ctx context.Context) (models.JobStatus, error) {
		calls++
		return models.JobInProgress, nil
	}

	status, err := Await(context.Background(), check, 4, time.Millisecond)
	// Exhaustion is not an error; the caller decides what a timeout
	// means.
	require.NoError(t, err)
	assert.Equal(t, models.JobInProgress, status)
	assert.Equal(t, 4, calls)
}

func TestAwaitCheckErrorFailsFast(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	check := func(ctx context.Context) (models.JobStatus, error) {
		calls++
		return "", boom
	}

	_, err := Await(context.Background(), check, 5, time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, calls)
}

func TestAwaitFirstCheckIsImmediate(t *testing.T) {
	check := func(ctx context.Context) (models.JobStatus, error) {
		return models.JobSucceeded, nil
	}

	start := time.Now()
	_, err := Await(context.Background(), check, 3, time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
