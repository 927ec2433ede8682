package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigopasa/launchajato/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func TestSessionManager_GetOrCreate(t *testing.T) {
	clock := newFakeClock()
	sm := NewSessionManager(zerolog.Nop(), WithSessionClock(clock.Now))

	s := sm.GetOrCreate("5511999990000")
	assert.Equal(t, models.StateInitial, s.State)
	assert.False(t, s.Authenticated)
	assert.Empty(t, s.UserID)
	assert.Equal(t, clock.Now(), s.LastActivity)
	assert.Equal(t, 1, sm.Count())

	clock.Advance(time.Minute)
	again := sm.GetOrCreate("5511999990000")
	assert.Equal(t, clock.Now(), again.LastActivity)
	assert.Equal(t, s.CreatedAt, again.CreatedAt)
	assert.Equal(t, 1, sm.Count())
}

func TestSessionManager_ReturnsCopies(t *testing.T) {
	sm := NewSessionManager(zerolog.Nop())

	s := sm.GetOrCreate("551")
	s.State = models.StateAwaitingUsername

	assert.Equal(t, models.StateInitial, sm.GetOrCreate("551").State)

	sm.Save(s)
	assert.Equal(t, models.StateAwaitingUsername, sm.GetOrCreate("551").State)
}

func TestSessionManager_Sweep(t *testing.T) {
	clock := newFakeClock()
	sm := NewSessionManager(zerolog.Nop(), WithSessionClock(clock.Now))

	sm.GetOrCreate("stale")
	clock.Advance(20 * time.Minute)
	sm.GetOrCreate("fresh")
	clock.Advance(11 * time.Minute)

	removed := sm.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, sm.Count())

	// the fresh session is 11 minutes idle and survives with its state
	fresh := sm.GetOrCreate("fresh")
	assert.Equal(t, models.StateInitial, fresh.State)

	// a recreated stale session starts over
	s := sm.GetOrCreate("stale")
	assert.Equal(t, clock.Now(), s.CreatedAt)
}

func TestSessionManager_SweepKeepsSessionAtBoundary(t *testing.T) {
	clock := newFakeClock()
	sm := NewSessionManager(zerolog.Nop(), WithSessionClock(clock.Now), WithSessionTTL(10*time.Minute))

	sm.GetOrCreate("edge")
	clock.Advance(10 * time.Minute)
	require.Equal(t, 0, sm.Sweep())

	clock.Advance(time.Second)
	require.Equal(t, 1, sm.Sweep())
	assert.Equal(t, 0, sm.Count())
}

func TestSessionManager_Delete(t *testing.T) {
	sm := NewSessionManager(zerolog.Nop())
	sm.GetOrCreate("551")
	sm.Delete("551")
	assert.Equal(t, 0, sm.Count())
}

func TestSessionManager_ExpiredSessionRestartsBeforeSweep(t *testing.T) {
	clock := newFakeClock()
	sm := NewSessionManager(zerolog.Nop(), WithSessionClock(clock.Now))

	s := sm.GetOrCreate("5511999990000")
	s.UserID = "u1"
	s.Authenticated = true
	s.State = models.StateViewingProject
	s.CurrentProjectID = "p1"
	sm.Save(s)

	clock.Advance(31 * time.Minute)
	again := sm.GetOrCreate("5511999990000")

	assert.Equal(t, models.StateInitial, again.State)
	assert.False(t, again.Authenticated)
	assert.Empty(t, again.UserID)
	assert.Empty(t, again.CurrentProjectID)
	assert.Equal(t, clock.Now(), again.CreatedAt)
	assert.Equal(t, 1, sm.Count())
}

func TestSessionManager_SessionWithinTTLSurvives(t *testing.T) {
	clock := newFakeClock()
	sm := NewSessionManager(zerolog.Nop(), WithSessionClock(clock.Now))

	s := sm.GetOrCreate("5511999990000")
	s.UserID = "u1"
	s.Authenticated = true
	s.State = models.StateAuthenticated
	sm.Save(s)

	clock.Advance(DefaultSessionTTL)
	again := sm.GetOrCreate("5511999990000")
	assert.True(t, again.Authenticated)
	assert.Equal(t, "u1", again.UserID)
}
