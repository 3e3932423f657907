package speech

import (
	"errors"
	"strings"
	"sync"
	"time"

	"voice-assistant-be/internal/pkg/logger"
)

const (
	BaseRestartDelay   = 250 * time.Millisecond
	MaxRestartDelay    = 5 * time.Second
	MaxRestartAttempts = 6
)

const (
	MsgRepeatedFailure  = "Microphone repeatedly failed. Please check browser permissions and click the mic to try again."
	MsgPermissionDenied = "Microphone permission denied. Please allow microphone access and try again."
)

var (
	ErrPermissionDenied = errors.New("speech: microphone permission denied")
	ErrRepeatedFailure  = errors.New("speech: microphone repeatedly failed")
)

// Stream is the speech-input engine being supervised.
type Stream interface {
	Start() error
	Stop() error
}

// NoticeFunc receives terminal failures together with the text to show and speak.
type NoticeFunc func(err error, message string)

// Status is a point-in-time copy of the reconnection state.
type Status struct {
	Listening bool          `json:"listening"`
	Attempt   int           `json:"attempt"`
	Delay     time.Duration `json:"delay"`
}

type Option func(*Supervisor)

func WithClock(c Clock) Option {
	return func(s *Supervisor) { s.clock = c }
}

func WithNotice(fn NoticeFunc) Option {
	return func(s *Supervisor) { s.notice = fn }
}

// Supervisor keeps a speech-input stream running. A stream that ends on its own is
// restarted with capped exponential backoff until MaxRestartAttempts is exceeded; a
// permission error stops it at once. The stream is never called with mu held.
type Supervisor struct {
	stream Stream
	clock  Clock
	notice NoticeFunc
	logger logger.ILogger

	mu        sync.Mutex
	listening bool
	attempt   int
	delay     time.Duration
	pending   Timer
	// generation invalidates restarts scheduled before the latest Start/Stop
	generation uint64
}

func NewSupervisor(stream Stream, log logger.ILogger, opts ...Option) *Supervisor {
	s := &Supervisor{
		stream: stream,
		clock:  realClock{},
		notice: func(error, string) {},
		logger: log,
		delay:  BaseRestartDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins listening. It is a no-op while already listening. An explicit start
// grants a fresh restart budget.
func (s *Supervisor) Start() {
	s.mu.Lock()
	if s.listening {
		s.mu.Unlock()
		return
	}
	s.listening = true
	s.attempt = 0
	s.delay = BaseRestartDelay
	s.generation++
	s.mu.Unlock()

	s.startStream("start")
}

// Stop ends listening and cancels any scheduled restart.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}
	s.halt()
	s.mu.Unlock()

	if err := s.stream.Stop(); err != nil {
		s.logger.Warn("SUPERVISOR", "Stream stop failed", map[string]interface{}{"error": err.Error()})
	}
}

// HandleStarted is the stream's "started" signal.
func (s *Supervisor) HandleStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempt = 0
	s.delay = BaseRestartDelay
}

// HandleEnded is the stream's "ended" signal. Ignored unless listening.
func (s *Supervisor) HandleEnded() {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}

	s.attempt++
	s.delay = backoff(s.attempt)

	if s.attempt > MaxRestartAttempts {
		attempts := s.attempt
		s.halt()
		s.mu.Unlock()

		s.logger.Warn("SUPERVISOR", "Giving up after repeated stream failures", map[string]interface{}{"attempts": attempts})
		s.notice(ErrRepeatedFailure, MsgRepeatedFailure)
		return
	}

	if s.pending != nil {
		s.pending.Stop()
	}
	gen, attempt, delay := s.generation, s.attempt, s.delay
	s.pending = s.clock.AfterFunc(delay, func() { s.restart(gen) })
	s.mu.Unlock()

	s.logger.Debug("SUPERVISOR", "Restart scheduled", map[string]interface{}{
		"attempt":  attempt,
		"delay_ms": delay.Milliseconds(),
	})
}

// HandleError is the stream's "error" signal. Permission failures stop listening
// without retrying; anything else waits for the following end signal.
func (s *Supervisor) HandleError(code string) {
	if !IsPermissionError(code) {
		s.logger.Warn("SUPERVISOR", "Stream error", map[string]interface{}{"code": code})
		return
	}

	s.mu.Lock()
	s.halt()
	s.mu.Unlock()

	s.logger.Warn("SUPERVISOR", "Microphone permission denied", map[string]interface{}{"code": code})
	s.notice(ErrPermissionDenied, MsgPermissionDenied)
}

func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Listening: s.listening, Attempt: s.attempt, Delay: s.delay}
}

func (s *Supervisor) restart(gen uint64) {
	s.mu.Lock()
	if !s.listening || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	s.startStream("restart")
}

func (s *Supervisor) startStream(reason string) {
	if err := s.stream.Start(); err != nil {
		s.logger.Warn("SUPERVISOR", "Stream "+reason+" failed", map[string]interface{}{"error": err.Error()})
	}
}

// halt must be called with mu held.
func (s *Supervisor) halt() {
	s.listening = false
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func backoff(attempt int) time.Duration {
	if attempt < 1 {
		return BaseRestartDelay
	}
	d := BaseRestartDelay
	for i := 1; i < attempt && d < MaxRestartDelay; i++ {
		d *= 2
	}
	if d > MaxRestartDelay {
		d = MaxRestartDelay
	}
	return d
}

// IsPermissionError matches the error codes browsers report for a denied microphone.
func IsPermissionError(code string) bool {
	c := strings.ToLower(code)
	return strings.Contains(c, "notallowed") ||
		strings.Contains(c, "not-allowed") ||
		strings.Contains(c, "permission") ||
		strings.Contains(c, "denied")
}
