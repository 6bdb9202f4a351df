package ratelimit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/ratelimit"
)

type failingStore struct{}

func (failingStore) PruneAndCount(ctx context.Context, key string, windowStart time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Record(ctx context.Context, key string, ts time.Time, window time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) OldestTimestamp(ctx context.Context, key string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("connection refused")
}

func (failingStore) Reset(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.New(nil)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestCheckInputValidation(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	_, err = l.Check(context.Background(), "", ratelimit.PolicyFor(ratelimit.EndpointDefault))
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)

	_, err = l.Check(context.Background(), "k", ratelimit.Policy{})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidPolicy)
}

func TestCheckSlidingWindow(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	policy := ratelimit.Policy{Name: "test", Limit: 3, Window: time.Minute}
	key := ratelimit.Key("team-1", "test")

	expected := []bool{true, true, true, false}
	for i, want := range expected {
		result, err := l.Check(context.Background(), key, policy)
		require.NoError(t, err)
		assert.Equal(t, want, result.Allowed, "call %d", i+1)
		assert.False(t, result.Degraded)

		if want {
			assert.Equal(t, policy.Limit-i-1, result.Remaining)
		} else {
			assert.Equal(t, 0, result.Remaining)
			assert.True(t, result.ResetAt.After(time.Now()), "denied result must carry a future reset time")
		}
	}
}

func TestCheckWindowReopens(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	policy := ratelimit.Policy{Name: "test", Limit: 1, Window: 50 * time.Millisecond}
	key := ratelimit.Key("team-1", "test")

	first, err := l.Check(context.Background(), key, policy)
	require.NoError(t, err)
	require.True(t, first.Allowed)

	second, err := l.Check(context.Background(), key, policy)
	require.NoError(t, err)
	require.False(t, second.Allowed)

	time.Sleep(60 * time.Millisecond)

	third, err := l.Check(context.Background(), key, policy)
	require.NoError(t, err)
	assert.True(t, third.Allowed)
}

func TestCheckFailsOpen(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(failingStore{})
	require.NoError(t, err)

	policy := ratelimit.PolicyFor(ratelimit.EndpointMessage)
	result, err := l.Check(context.Background(), ratelimit.Key("team-1", ratelimit.EndpointMessage), policy)
	require.NoError(t, err)

	assert.True(t, result.Allowed)
	assert.True(t, result.Degraded)
	assert.Equal(t, policy.Limit, result.Remaining)
}

func TestCheckKeysAreIndependent(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	policy := ratelimit.Policy{Name: "test", Limit: 1, Window: time.Minute}

	a, err := l.Check(context.Background(), ratelimit.Key("team-1", "write"), policy)
	require.NoError(t, err)
	b, err := l.Check(context.Background(), ratelimit.Key("team-2", "write"), policy)
	require.NoError(t, err)

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
}

func TestCheckConcurrentOverAdmissionIsBounded(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	policy := ratelimit.Policy{Name: "test", Limit: 5, Window: time.Minute}
	key := ratelimit.Key("team-1", "test")

	const callers = 20
	var wg sync.WaitGroup
	allowed := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := l.Check(context.Background(), key, policy)
			if err == nil {
				allowed <- result.Allowed
			}
		}()
	}
	wg.Wait()
	close(allowed)

	admitted := 0
	for ok := range allowed {
		if ok {
			admitted++
		}
	}

	// Over-admission is bounded by the number of in-flight checks.
	assert.GreaterOrEqual(t, admitted, policy.Limit)
	assert.LessOrEqual(t, admitted, callers)
}

func TestStatusDoesNotConsume(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	policy := ratelimit.Policy{Name: "test", Limit: 2, Window: time.Minute}
	key := ratelimit.Key("team-1", "test")

	for i := 0; i < 5; i++ {
		result, err := l.Status(context.Background(), key, policy)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2, result.Remaining)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	l, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)

	policy := ratelimit.Policy{Name: "test", Limit: 1, Window: time.Minute}
	key := ratelimit.Key("team-1", "test")

	_, err = l.Check(context.Background(), key, policy)
	require.NoError(t, err)

	denied, err := l.Check(context.Background(), key, policy)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	require.NoError(t, l.Reset(context.Background(), key))

	again, err := l.Check(context.Background(), key, policy)
	require.NoError(t, err)
	assert.True(t, again.Allowed)
}

func TestResultRetryAfter(t *testing.T) {
	t.Parallel()

	allowed := &ratelimit.Result{Allowed: true, ResetAt: time.Now().Add(time.Minute)}
	assert.Equal(t, time.Duration(0), allowed.RetryAfter())

	denied := &ratelimit.Result{Allowed: false, ResetAt: time.Now().Add(time.Minute)}
	assert.Greater(t, denied.RetryAfter(), 50*time.Second)
}
