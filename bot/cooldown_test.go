package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCooldowns_SingleUse(t *testing.T) {
	clock := newFakeClock()
	cooldowns := NewCooldowns().WithClock(clock.Now)

	_, ok := cooldowns.Take("cmd:beg:1", 1, 3*time.Second)
	assert.True(t, ok)

	retryAfter, ok := cooldowns.Take("cmd:beg:1", 1, 3*time.Second)
	assert.False(t, ok)
	assert.InDelta(t, float64(3*time.Second), float64(retryAfter), float64(time.Millisecond))

	clock.Advance(time.Second)
	retryAfter, ok = cooldowns.Take("cmd:beg:1", 1, 3*time.Second)
	assert.False(t, ok)
	assert.InDelta(t, float64(2*time.Second), float64(retryAfter), float64(time.Millisecond))

	clock.Advance(2*time.Second + 10*time.Millisecond)
	_, ok = cooldowns.Take("cmd:beg:1", 1, 3*time.Second)
	assert.True(t, ok)
}

func TestCooldowns_KeysAreIndependent(t *testing.T) {
	cooldowns := NewCooldowns().WithClock(newFakeClock().Now)

	_, ok := cooldowns.Take("cmd:beg:1", 1, 3*time.Second)
	assert.True(t, ok)
	_, ok = cooldowns.Take("cmd:beg:2", 1, 3*time.Second)
	assert.True(t, ok)
	assert.Equal(t, 2, cooldowns.Len())
}

func TestCooldowns_Burst(t *testing.T) {
	cooldowns := NewCooldowns().WithClock(newFakeClock().Now)

	for i := 0; i < guildCommandRate; i++ {
		_, ok := cooldowns.Take("guild:1", guildCommandRate, guildCommandWindow)
		assert.True(t, ok, "use %d should be allowed", i+1)
	}

	_, ok := cooldowns.Take("guild:1", guildCommandRate, guildCommandWindow)
	assert.False(t, ok)
}

func TestCooldowns_Unlimited(t *testing.T) {
	cooldowns := NewCooldowns()

	_, ok := cooldowns.Take("any", 0, time.Second)
	assert.True(t, ok)
	assert.Equal(t, 0, cooldowns.Len())
}
