package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("old", "x", -time.Second)
	c.Set("fresh", "y")

	_, ok := c.Get("old")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 1, c.Cleanup())
	assert.Equal(t, 1, c.Len())
}

func TestCacheInvalidateAndFlush(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	assert.Equal(t, 1, c.Len())
	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestSweepAll(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("gone", 1, -time.Second)
	assert.GreaterOrEqual(t, SweepAll(), 1)
	assert.Equal(t, 0, c.Len())
}

func TestRateLimiterTokens(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	assert.True(t, rl.TryAcquire())
	assert.True(t, rl.TryAcquire())
	assert.False(t, rl.TryAcquire())
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoGetHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := GetBytes(context.Background(), srv.URL, map[string]string{"Accept": "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestDoGetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, status, err := DoGet(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)

	var httpErr *ErrHTTP
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}
