package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"battlebrain-service/internal/domain"
)

// ErrSubmissionInFlight is returned when a submission is requested while
// another one for the same session has not finished yet.
var ErrSubmissionInFlight = errors.New("stage submission already in flight")

// ErrSessionClosed is returned when acting on a finished or abandoned session.
var ErrSessionClosed = errors.New("attempt session closed")

// AttemptSession holds the in-flight state of one student taking one quiz:
// the current stage, the answer buffer, and the stage countdown. Answers live
// only in memory until a stage is submitted; closing the session mid-stage
// discards them with no persisted effect.
type AttemptSession struct {
	engine    *Engine
	key       domain.StudentKey
	quiz      domain.Quiz
	stageTime time.Duration
	onExpiry  func(StageOutcome, error)

	mu         sync.Mutex
	stageIndex int
	answers    []string
	timer      *StageTimer
	closed     bool
}

// NewAttemptSession starts an attempt at stage 0 and arms the stage timer.
// onExpiry is invoked after a timer-driven auto submission; it may be nil.
func NewAttemptSession(engine *Engine, key domain.StudentKey, quiz domain.Quiz, stageTime time.Duration, onExpiry func(StageOutcome, error)) *AttemptSession {
	s := &AttemptSession{
		engine:    engine,
		key:       key,
		quiz:      quiz,
		stageTime: stageTime,
		onExpiry:  onExpiry,
		answers:   make([]string, domain.QuestionsPerStage),
	}
	s.mu.Lock()
	s.armTimer()
	s.mu.Unlock()
	return s
}

// StageIndex returns the 0-indexed stage currently being attempted.
func (s *AttemptSession) StageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageIndex
}

// Remaining reports the time left on the current stage countdown.
func (s *AttemptSession) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return 0
	}
	return s.timer.Remaining()
}

// SelectAnswer records the chosen option for a question of the current stage.
func (s *AttemptSession) SelectAnswer(questionIndex int, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if questionIndex < 0 || questionIndex >= domain.QuestionsPerStage {
		return domain.ErrStageOutOfRange
	}
	s.answers[questionIndex] = option
	return nil
}

// Submit scores the current stage with the collected answers. On a mid-quiz
// pass the buffer and timer reset for the next stage; on a terminal outcome
// the session closes. The mutex is held across the engine call so at most one
// submission runs at a time; a concurrent caller fails fast instead of queuing
// a second submission behind the first.
func (s *AttemptSession) Submit(ctx context.Context) (StageOutcome, error) {
	if !s.mu.TryLock() {
		return StageOutcome{}, ErrSubmissionInFlight
	}
	defer s.mu.Unlock()
	if s.closed {
		return StageOutcome{}, ErrSessionClosed
	}

	stageIndex := s.stageIndex
	answers := make([]string, len(s.answers))
	copy(answers, s.answers)
	leftover := s.stageTime
	if s.timer != nil {
		leftover = s.timer.Remaining()
		s.timer.Stop()
	}

	out, err := s.engine.SubmitStage(ctx, s.key, s.quiz, stageIndex, answers)
	switch {
	case err != nil:
		// Leave the session usable for a retry after a store hiccup, but keep
		// the countdown where it was; a failed submit grants no extra time.
		s.armTimerFor(leftover)
	case out.State == StateInProgress:
		s.stageIndex = out.NextStage
		s.answers = make([]string, domain.QuestionsPerStage)
		s.armTimer()
	default:
		s.closed = true
		s.timer = nil
	}
	return out, err
}

// Close abandons the attempt: the timer is torn down and the unsubmitted
// answer buffer is discarded.
func (s *AttemptSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.closed = true
}

// armTimer must run with the mutex held.
func (s *AttemptSession) armTimer() {
	s.armTimerFor(s.stageTime)
}

func (s *AttemptSession) armTimerFor(d time.Duration) {
	if d <= 0 {
		s.timer = nil
		return
	}
	s.timer = NewStageTimer(d, s.autoSubmit)
}

// autoSubmit fires on timer expiry and submits whatever answers were
// collected so far. The TryLock guard in Submit makes it a no-op when a
// manual submission is already running: that submission stopped the timer or
// supersedes this one.
func (s *AttemptSession) autoSubmit() {
	out, err := s.Submit(context.Background())
	if errors.Is(err, ErrSubmissionInFlight) || errors.Is(err, ErrSessionClosed) {
		return
	}
	if s.onExpiry != nil {
		s.onExpiry(out, err)
	}
}
