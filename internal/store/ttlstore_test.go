package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	s := New[string, int](time.Hour)
	defer s.Close()

	s.Set("a", 1, time.Minute)
	v, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestGetMissing(t *testing.T) {
	s := New[string, int](time.Hour)
	defer s.Close()

	_, ok := s.Get("missing")
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	s := New[string, int](time.Hour)
	defer s.Close()

	s.Set("a", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := s.Get("a")
	require.False(t, ok)
}

func TestTouchExtendsDeadline(t *testing.T) {
	s := New[string, int](time.Hour)
	defer s.Close()

	s.Set("a", 1, 5*time.Millisecond)
	require.True(t, s.Touch("a", time.Minute))
	time.Sleep(10 * time.Millisecond)
	_, ok := s.Get("a")
	require.True(t, ok)
}

func TestTouchMissingReturnsFalse(t *testing.T) {
	s := New[string, int](time.Hour)
	defer s.Close()
	require.False(t, s.Touch("nope", time.Minute))
}

func TestSweepEvictsExpiredAndFiresCallback(t *testing.T) {
	s := New[string, int](5 * time.Millisecond)
	defer s.Close()

	evicted := make(chan string, 1)
	s.OnEvict(func(key string, _ int) { evicted <- key })

	s.Set("a", 1, time.Millisecond)
	select {
	case key := <-evicted:
		require.Equal(t, "a", key)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for eviction callback")
	}
	require.Equal(t, 0, s.Len())
}

func TestForEachSkipsExpired(t *testing.T) {
	s := New[string, int](time.Hour)
	defer s.Close()

	s.Set("live", 1, time.Minute)
	s.Set("dead", 2, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	seen := map[string]int{}
	s.ForEach(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	require.Equal(t, map[string]int{"live": 1}, seen)
}
