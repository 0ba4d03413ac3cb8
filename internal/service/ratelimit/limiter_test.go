package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	clk := time.Unix(1_700_000_000, 0)
	l := New(1, 2)
	l.now = func() time.Time { return clk }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have independent buckets")

	clk = clk.Add(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestLimiter_SweepsIdleKeys(t *testing.T) {
	clk := time.Unix(1_700_000_000, 0)
	l := New(1, 1)
	l.now = func() time.Time { return clk }

	for i := 0; i < 255; i++ {
		l.Allow(string(rune('a' + i)))
	}
	clk = clk.Add(2 * time.Minute)
	l.Allow("trigger")

	assert.Equal(t, 1, l.Len())
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow("anyone"))
}
