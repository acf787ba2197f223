package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/store"
)

// DefaultStorageKey is the key the session is persisted under.
const DefaultStorageKey = "interview-storage"

// ResumeChoice resolves a suspended session.
type ResumeChoice string

const (
	ResumeContinue ResumeChoice = "continue"
	ResumeRestart  ResumeChoice = "restart"
)

// View is a consistent read of the machine.
type View struct {
	State     State `json:"state"`
	Phase     Phase `json:"phase"`
	Suspended bool  `json:"suspended"`
	Degraded  bool  `json:"persistenceDegraded"`
}

// Listener is notified after every successful transition, outside the
// machine's lock.
type Listener func(View)

// Observer receives transition outcomes, typically for metrics.
type Observer interface {
	Transition(op string, err error)
	Phase(p Phase)
}

// StepResult reports what one countdown step did.
type StepResult struct {
	Remaining int
	TimedOut  bool
	Running   bool
}

// Machine serializes transitions on a State, flushes every mutation to a
// snapshot repository and keeps an audit trail.
type Machine struct {
	mu        sync.Mutex
	state     State
	suspended bool
	degraded  bool

	snapshots store.SnapshotRepo
	events    store.EventRepo
	key       string
	retention int
	log       *zap.Logger
	observer  Observer
	listeners []Listener
	now       func() time.Time
	newID     func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithEvents records an audit event for every transition except ticks.
func WithEvents(repo store.EventRepo) Option {
	return func(m *Machine) { m.events = repo }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(m *Machine) { m.key = key }
}

// WithRetention keeps only the newest n snapshots after each save.
// Zero disables pruning.
func WithRetention(n int) Option {
	return func(m *Machine) { m.retention = n }
}

// WithObserver attaches a transition observer.
func WithObserver(o Observer) Option {
	return func(m *Machine) { m.observer = o }
}

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(m *Machine) { m.listeners = append(m.listeners, l) }
}

// WithClock overrides the wall clock used for answer timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator overrides the session ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// Open rehydrates the most recent persisted state under the storage key.
// A missing snapshot yields the idle state. A persisted session that was
// still in flight comes back suspended until ResumeOrRestart is called.
// If the backend cannot be read the machine runs in memory only.
func Open(ctx context.Context, snapshots store.SnapshotRepo, opts ...Option) *Machine {
	m := &Machine{
		state:     Idle(),
		snapshots: snapshots,
		key:       DefaultStorageKey,
		log:       zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}

	if m.snapshots == nil {
		m.degraded = true
		return m
	}

	snap, err := m.snapshots.Latest(ctx, m.key)
	if err != nil {
		m.log.Warn("load interview snapshot failed; continuing in memory", zap.String("key", m.key), zap.Error(err))
		m.degraded = true
		return m
	}
	if snap == nil {
		return m
	}

	st, err := decodeState(snap.Data)
	if err != nil {
		m.log.Warn("discarding unreadable interview snapshot", zap.String("key", m.key), zap.Error(err))
		return m
	}
	m.state = st
	switch st.Phase() {
	case PhaseActive, PhaseAwaitingScore:
		m.suspended = true
	}
	m.log.Info("interview state restored",
		zap.String("session_id", st.SessionID),
		zap.Stringer("phase", st.Phase()),
		zap.Bool("suspended", m.suspended))
	return m
}

// View returns a deep copy of the current state.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Machine) viewLocked() View {
	phase := m.state.Phase()
	if m.suspended {
		phase = PhaseSuspended
	}
	return View{
		State:     m.state.Clone(),
		Phase:     phase,
		Suspended: m.suspended,
		Degraded:  m.degraded,
	}
}

// SetCandidateInfo records the candidate's identity.
func (m *Machine) SetCandidateInfo(ctx context.Context, info CandidateInfo) (View, error) {
	return m.apply(ctx, OpSetCandidate, func(s State) (State, error) {
		return SetCandidateInfo(s, info)
	})
}

// StartInterview loads questions and arms the timer for the first one.
func (m *Machine) StartInterview(ctx context.Context, questions []Question) (View, error) {
	return m.apply(ctx, OpStart, func(s State) (State, error) {
		next, err := StartInterview(s, questions)
		if err != nil {
			return s, err
		}
		next.SessionID = m.newID()
		return next, nil
	})
}

// SubmitAnswer records an answer for the current question. A zero
// SubmittedAt is stamped with the machine's clock.
func (m *Machine) SubmitAnswer(ctx context.Context, a Answer) (View, error) {
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = m.now()
	}
	return m.apply(ctx, OpSubmitAnswer, func(s State) (State, error) {
		return SubmitAnswer(s, a)
	})
}

// Advance moves to the next question, or to awaiting-score after the last.
func (m *Machine) Advance(ctx context.Context) (View, error) {
	return m.apply(ctx, OpAdvance, Advance)
}

// Answer is the presenter's one-shot submission: it records text for the
// current question with the elapsed time and advances, as a single locked
// sequence so no tick can land in between.
func (m *Machine) Answer(ctx context.Context, text string) (View, error) {
	m.mu.Lock()
	q, ok := m.state.CurrentQuestion()
	if !ok || m.suspended {
		view, err := m.applyLocked(ctx, OpSubmitAnswer, func(s State) (State, error) {
			return SubmitAnswer(s, Answer{})
		})
		m.mu.Unlock()
		return view, err
	}
	used := q.TimeLimitSeconds - m.state.TimeRemainingSeconds
	answer := Answer{
		QuestionID:      q.ID,
		Text:            text,
		TimeUsedSeconds: used,
		SubmittedAt:     m.now(),
	}
	if _, err := m.applyLocked(ctx, OpSubmitAnswer, func(s State) (State, error) {
		return SubmitAnswer(s, answer)
	}); err != nil {
		view := m.viewLocked()
		m.mu.Unlock()
		return view, err
	}
	view, err := m.applyLocked(ctx, OpAdvance, Advance)
	m.mu.Unlock()
	m.notify(view, err)
	return view, err
}

// Tick records a new remaining time for the running countdown.
func (m *Machine) Tick(ctx context.Context, remaining int) (View, error) {
	return m.apply(ctx, OpTick, func(s State) (State, error) {
		return Tick(s, remaining)
	})
}

// HandleTimeout records a "no answer" for the current question and advances.
func (m *Machine) HandleTimeout(ctx context.Context) (View, error) {
	now := m.now()
	return m.apply(ctx, OpTimeout, func(s State) (State, error) {
		return HandleTimeout(s, now)
	})
}

// Step is one countdown beat: it decrements the remaining time and, when
// the countdown reaches zero, runs the timeout path exactly once. Both
// happen under one lock so a concurrent submission cannot interleave.
func (m *Machine) Step(ctx context.Context) (StepResult, error) {
	m.mu.Lock()
	view, err := m.applyLocked(ctx, OpTick, func(s State) (State, error) {
		return Tick(s, s.TimeRemainingSeconds-1)
	})
	if err != nil {
		m.mu.Unlock()
		return StepResult{Remaining: view.State.TimeRemainingSeconds, Running: view.State.IsTimerRunning}, err
	}

	res := StepResult{Remaining: view.State.TimeRemainingSeconds, Running: true}
	if res.Remaining <= 0 {
		now := m.now()
		view, err = m.applyLocked(ctx, OpTimeout, func(s State) (State, error) {
			return HandleTimeout(s, now)
		})
		if err != nil {
			m.mu.Unlock()
			return res, err
		}
		res.TimedOut = true
		res.Remaining = view.State.TimeRemainingSeconds
		res.Running = view.State.IsTimerRunning
	}
	m.mu.Unlock()
	m.notify(view, nil)
	return res, nil
}

// SetTimerActive pauses or resumes the countdown.
func (m *Machine) SetTimerActive(ctx context.Context, active bool) (View, error) {
	return m.apply(ctx, OpSetTimerActive, func(s State) (State, error) {
		return SetTimerActive(s, active)
	})
}

// CompleteInterview stores the final score and summary.
func (m *Machine) CompleteInterview(ctx context.Context, score float64, summary string) (View, error) {
	return m.apply(ctx, OpComplete, func(s State) (State, error) {
		return CompleteInterview(s, score, summary)
	})
}

// ResetInterview returns to idle from any phase, including suspended.
func (m *Machine) ResetInterview(ctx context.Context) (View, error) {
	return m.apply(ctx, OpReset, func(s State) (State, error) {
		return ResetInterview(s), nil
	})
}

// ResumeOrRestart resolves a suspended session. Continue re-arms the timer
// where it stopped; if the process died between recording an answer and
// advancing, continuing finishes that advance. Restart is a full reset.
func (m *Machine) ResumeOrRestart(ctx context.Context, choice ResumeChoice) (View, error) {
	return m.apply(ctx, OpResumeOrRestart, func(s State) (State, error) {
		if !m.suspended {
			return s, invalidState(OpResumeOrRestart, s, "session is not suspended")
		}
		switch choice {
		case ResumeRestart:
			m.suspended = false
			return ResetInterview(s), nil
		case ResumeContinue:
		default:
			return s, invalidArgument(OpResumeOrRestart, s, "unknown resume choice %q", choice)
		}

		next := s.Clone()
		if next.IsActive {
			if next.AnswerPending() {
				advanced, err := Advance(next)
				if err != nil {
					return s, err
				}
				next = advanced
			} else {
				next.IsTimerRunning = true
			}
		}
		m.suspended = false
		return next, nil
	})
}

func (m *Machine) apply(ctx context.Context, op string, fn func(State) (State, error)) (View, error) {
	m.mu.Lock()
	view, err := m.applyLocked(ctx, op, fn)
	m.mu.Unlock()
	m.notify(view, err)
	return view, err
}

func (m *Machine) applyLocked(ctx context.Context, op string, fn func(State) (State, error)) (View, error) {
	if m.suspended && op != OpReset && op != OpResumeOrRestart {
		err := &TransitionError{
			Op:     op,
			Phase:  PhaseSuspended,
			Kind:   ErrInvalidState,
			Reason: "session was restored and must be continued or restarted first",
		}
		m.observe(op, err)
		return m.viewLocked(), err
	}

	next, err := fn(m.state)
	m.observe(op, err)
	if err != nil {
		return m.viewLocked(), err
	}
	if op == OpReset {
		m.suspended = false
	}
	m.commitLocked(ctx, op, next)
	return m.viewLocked(), nil
}

func (m *Machine) commitLocked(ctx context.Context, op string, next State) {
	m.state = next
	m.persistLocked(ctx)
	if op != OpTick {
		m.recordLocked(ctx, op)
	}
	if m.observer != nil {
		phase := next.Phase()
		if m.suspended {
			phase = PhaseSuspended
		}
		m.observer.Phase(phase)
	}
}

func (m *Machine) persistLocked(ctx context.Context) {
	if m.degraded {
		return
	}
	data, err := json.Marshal(m.state)
	if err != nil {
		m.log.Error("encode interview state failed; continuing in memory", zap.String("key", m.key), zap.Error(err))
		m.degraded = true
		return
	}
	snap := &store.Snapshot{Key: m.key, SavedAt: m.now().UTC(), Data: data}
	if err := m.snapshots.Save(ctx, snap); err != nil {
		m.log.Warn("persist interview state failed; continuing in memory", zap.String("key", m.key), zap.Error(err))
		m.degraded = true
		return
	}
	if m.retention > 0 {
		if err := m.snapshots.Prune(ctx, m.key, m.retention); err != nil {
			m.log.Warn("prune interview snapshots", zap.String("key", m.key), zap.Error(err))
		}
	}
}

func (m *Machine) recordLocked(ctx context.Context, op string) {
	if m.events == nil {
		return
	}
	ev := store.Event{
		SessionID: m.state.SessionID,
		Action:    op,
		Detail: fmt.Sprintf("phase=%s index=%d answers=%d remaining=%d",
			m.state.Phase(), m.state.CurrentQuestionIndex, len(m.state.Answers), m.state.TimeRemainingSeconds),
		Timestamp: m.now().UTC(),
	}
	if err := m.events.Append(ctx, ev); err != nil {
		m.log.Warn("append interview event", zap.String("action", op), zap.Error(err))
	}
}

func (m *Machine) observe(op string, err error) {
	if m.observer != nil {
		m.observer.Transition(op, err)
	}
}

func (m *Machine) notify(view View, err error) {
	if err != nil {
		return
	}
	for _, l := range m.listeners {
		l(view)
	}
}

func decodeState(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return Idle(), fmt.Errorf("decode interview state: %w", err)
	}
	if st.Questions == nil {
		st.Questions = []Question{}
	}
	if st.Answers == nil {
		st.Answers = []Answer{}
	}
	if st.CurrentQuestionIndex < 0 || st.CurrentQuestionIndex > len(st.Questions) {
		return Idle(), fmt.Errorf("decode interview state: index %d out of range", st.CurrentQuestionIndex)
	}
	if st.TimeRemainingSeconds < 0 {
		st.TimeRemainingSeconds = 0
	}
	return st, nil
}
