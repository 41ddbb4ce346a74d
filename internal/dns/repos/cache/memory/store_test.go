package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rrwalk/rrwalk/internal/dns/common/clock"
)

func TestSetIfAbsentThenGet(t *testing.T) {
	c := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := New(c)

	stored, err := s.SetIfAbsent("k", []byte("v"), 60)
	require.NoError(t, err)
	assert.True(t, stored)

	val, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)
}

func TestSetIfAbsentDoesNotOverwrite(t *testing.T) {
	c := clock.NewMockClock(time.Now())
	s := New(c)

	stored1, err := s.SetIfAbsent("k", []byte("first"), 60)
	require.NoError(t, err)
	assert.True(t, stored1)

	stored2, err := s.SetIfAbsent("k", []byte("second"), 60)
	require.NoError(t, err)
	assert.False(t, stored2)

	val, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("first"), val)
}

func TestGetAfterExpiryIsAMiss(t *testing.T) {
	c := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := New(c)

	_, err := s.SetIfAbsent("k", []byte("v"), 30)
	require.NoError(t, err)

	c.Advance(30 * time.Second)
	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// once expired, a fresh set-if-absent succeeds
	stored, err := s.SetIfAbsent("k", []byte("v2"), 30)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestClearRemovesEverything(t *testing.T) {
	s := New(clock.RealClock{})
	_, err := s.SetIfAbsent("a", []byte("1"), 60)
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	_, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}
