package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	results []int
	err     error
	calls   atomic.Int32
}

func (f *fakeExpirer) ExpireStale(_ context.Context, batch int) (int, error) {
	i := int(f.calls.Add(1)) - 1
	if f.err != nil {
		return 0, f.err
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return 0, nil
}

func TestRunOnceDrainsBatches(t *testing.T) {
	expirer := &fakeExpirer{results: []int{expirationBatch, expirationBatch, 3}}
	job := NewExpirationJob("@every 1m", expirer)

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2*expirationBatch+3, n)
	assert.EqualValues(t, 3, expirer.calls.Load())
}

func TestRunOnceError(t *testing.T) {
	job := NewExpirationJob("@every 1m", &fakeExpirer{err: errors.New("db down")})
	_, err := job.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestStartRejectsBadSpec(t *testing.T) {
	job := NewExpirationJob("every minute please", &fakeExpirer{})
	assert.Error(t, job.Start())
}

func TestScheduledSweep(t *testing.T) {
	expirer := &fakeExpirer{}
	job := NewExpirationJob("@every 1s", expirer)
	require.NoError(t, job.Start())
	defer job.Stop()

	assert.Eventually(t, func() bool { return expirer.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
