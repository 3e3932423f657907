package speech

import (
	"errors"
	"sync"
	"testing"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeTimer struct {
	clock   *fakeClock
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every timer that is still armed and returns how many ran.
func (c *fakeClock) fire() int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

func (c *fakeClock) armed() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

type fakeStream struct {
	mu     sync.Mutex
	starts int
	stops  int
	err    error
}

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	return s.err
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *fakeStream) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

type notices struct {
	mu   sync.Mutex
	errs []error
	msgs []string
}

func (n *notices) record(err error, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
	n.msgs = append(n.msgs, msg)
}

func newTestSupervisor() (*Supervisor, *fakeStream, *fakeClock, *notices) {
	stream := &fakeStream{}
	clock := &fakeClock{}
	n := &notices{}
	s := NewSupervisor(stream, logger.NewNopLogger(), WithClock(clock), WithNotice(n.record))
	return s, stream, clock, n
}

func TestBackoff(t *testing.T) {
	want := []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		5 * time.Second,
		5 * time.Second,
	}
	for i, d := range want {
		assert.Equal(t, d, backoff(i+1), "attempt %d", i+1)
	}
}

func TestSupervisor_StartIsIdempotent(t *testing.T) {
	s, stream, _, _ := newTestSupervisor()

	s.Start()
	s.Start()

	assert.Equal(t, 1, stream.startCount())
	assert.True(t, s.Status().Listening)
}

func TestSupervisor_RestartsWithBackoff(t *testing.T) {
	s, stream, clock, n := newTestSupervisor()
	s.Start()

	s.HandleEnded()
	armed := clock.armed()
	require.Len(t, armed, 1)
	assert.Equal(t, 250*time.Millisecond, armed[0].delay)

	clock.fire()
	assert.Equal(t, 2, stream.startCount())

	s.HandleEnded()
	armed = clock.armed()
	require.Len(t, armed, 1)
	assert.Equal(t, 500*time.Millisecond, armed[0].delay)

	// a successful start resets the budget
	clock.fire()
	s.HandleStarted()
	assert.Equal(t, 0, s.Status().Attempt)

	s.HandleEnded()
	assert.Equal(t, 250*time.Millisecond, clock.armed()[0].delay)
	assert.Empty(t, n.errs)
}

func TestSupervisor_GivesUpAfterMaxAttempts(t *testing.T) {
	s, stream, clock, n := newTestSupervisor()
	s.Start()

	for i := 1; i <= MaxRestartAttempts; i++ {
		s.HandleEnded()
		require.Equal(t, 1, clock.fire(), "restart %d scheduled", i)
	}
	assert.Equal(t, 1+MaxRestartAttempts, stream.startCount())

	// 7th self-termination
	s.HandleEnded()
	assert.False(t, s.Status().Listening)
	assert.Empty(t, clock.armed(), "no 8th restart")
	require.Len(t, n.errs, 1)
	assert.True(t, errors.Is(n.errs[0], ErrRepeatedFailure))
	assert.Equal(t, MsgRepeatedFailure, n.msgs[0])

	// further end signals are ignored once stopped
	s.HandleEnded()
	s.HandleEnded()
	assert.Equal(t, 0, clock.fire())
	assert.Equal(t, 1+MaxRestartAttempts, stream.startCount())
	assert.Len(t, n.errs, 1)
}

func TestSupervisor_StopCancelsPendingRestart(t *testing.T) {
	s, stream, clock, _ := newTestSupervisor()
	s.Start()
	s.HandleEnded()
	pending := clock.armed()
	require.Len(t, pending, 1)

	s.Stop()
	assert.True(t, pending[0].stopped)
	assert.Equal(t, 1, stream.stops)

	// even a timer that slipped through must re-check state
	pending[0].fn()
	assert.Equal(t, 1, stream.startCount())
}

func TestSupervisor_StaleRestartAfterStopStart(t *testing.T) {
	s, stream, clock, _ := newTestSupervisor()
	s.Start()
	s.HandleEnded()
	stale := clock.armed()[0]

	s.Stop()
	s.Start()
	stale.fn()

	assert.Equal(t, 2, stream.startCount(), "stale restart from the previous session dropped")
}

func TestSupervisor_PermissionDeniedShortCircuits(t *testing.T) {
	codes := []string{"not-allowed", "NotAllowedError", "permission-denied", "Denied by user"}

	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			s, stream, clock, n := newTestSupervisor()
			s.Start()
			s.HandleEnded()

			s.HandleError(code)

			assert.False(t, s.Status().Listening)
			assert.Empty(t, clock.armed())
			require.Len(t, n.errs, 1)
			assert.ErrorIs(t, n.errs[0], ErrPermissionDenied)
			assert.Equal(t, MsgPermissionDenied, n.msgs[0])

			s.HandleEnded()
			assert.Equal(t, 0, clock.fire())
			assert.Equal(t, 1, stream.startCount())
		})
	}
}

func TestSupervisor_OtherErrorsWaitForEnd(t *testing.T) {
	s, _, clock, n := newTestSupervisor()
	s.Start()

	s.HandleError("no-speech")
	assert.True(t, s.Status().Listening)
	assert.Empty(t, n.errs)

	s.HandleEnded()
	assert.Len(t, clock.armed(), 1)
}

func TestSupervisor_StartFailureIsNotFatal(t *testing.T) {
	s, stream, _, _ := newTestSupervisor()
	stream.err = errors.New("engine busy")

	s.Start()
	assert.True(t, s.Status().Listening)
}

func TestSupervisor_RealClockLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	stream := &fakeStream{}
	s := NewSupervisor(stream, logger.NewNopLogger())
	s.Start()
	s.HandleEnded()

	require.Eventually(t, func() bool { return stream.startCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	s.HandleEnded()
	s.Stop()
	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, 2, stream.startCount())
}
