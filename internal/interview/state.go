package interview

import (
	"fmt"
	"time"
)

// NoAnswerText is recorded as the answer text when a question times out.
const NoAnswerText = "[No answer provided]"

// Difficulty is the descriptive tier of a question. It has no effect on
// timing beyond each question's own time limit.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Rank orders difficulties from easiest to hardest. Unknown values sort last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}

// CandidateInfo identifies the person being interviewed.
type CandidateInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ResumeRef string `json:"resumeUrl,omitempty"`
}

// Question is a single timed interview question.
type Question struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"timeLimit"`
}

// Answer records the response to one question.
type Answer struct {
	QuestionID      string    `json:"questionId"`
	Text            string    `json:"text"`
	TimeUsedSeconds int       `json:"timeUsed"`
	SubmittedAt     time.Time `json:"timestamp"`
}

// TimedOut reports whether the answer was recorded by the timeout path.
func (a Answer) TimedOut() bool {
	return a.Text == NoAnswerText
}

// State is the persisted interview aggregate. It is a plain value: every
// transition in this package returns a new State and leaves its input
// untouched.
type State struct {
	SessionID            string         `json:"sessionId,omitempty"`
	CandidateInfo        *CandidateInfo `json:"candidateInfo"`
	Questions            []Question     `json:"questions"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	Answers              []Answer       `json:"answers"`
	IsActive             bool           `json:"isInterviewActive"`
	IsComplete           bool           `json:"isInterviewComplete"`
	TimeRemainingSeconds int            `json:"timeRemaining"`
	IsTimerRunning       bool           `json:"isTimerActive"`
	FinalScore           *float64       `json:"finalScore"`
	Summary              *string        `json:"summary"`
}

// Idle returns the empty state a fresh store starts from.
func Idle() State {
	return State{
		Questions: []Question{},
		Answers:   []Answer{},
	}
}

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseIdle          Phase = iota // No candidate, no questions
	PhaseAwaitingStart              // Candidate known, questions not loaded
	PhaseActive                     // Timer armed, accepting answers
	PhaseAwaitingScore              // All questions answered, waiting for the scorer
	PhaseComplete                   // Scored
	PhaseSuspended                  // Rehydrated in-flight session awaiting a resume decision
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingStart:
		return "awaiting_start"
	case PhaseActive:
		return "active"
	case PhaseAwaitingScore:
		return "awaiting_score"
	case PhaseComplete:
		return "complete"
	case PhaseSuspended:
		return "suspended"
	}
	return "unknown"
}

// MarshalText renders the phase by name in JSON output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for c := PhaseIdle; c <= PhaseSuspended; c++ {
		if c.String() == string(text) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Phase derives the lifecycle phase from the stored flags. Suspension is a
// property of the running process, not of the stored state, so it is
// reported by Machine rather than here.
func (s State) Phase() Phase {
	switch {
	case s.IsComplete:
		return PhaseComplete
	case s.IsActive:
		return PhaseActive
	case len(s.Questions) > 0 && len(s.Answers) == len(s.Questions):
		return PhaseAwaitingScore
	case s.CandidateInfo != nil:
		return PhaseAwaitingStart
	}
	return PhaseIdle
}

// CurrentQuestion returns the question awaiting an answer, if any.
func (s State) CurrentQuestion() (Question, bool) {
	if !s.IsActive || s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// AnswerPending reports whether the current question has been answered but
// the session has not yet advanced.
func (s State) AnswerPending() bool {
	return s.IsActive && len(s.Answers) > s.CurrentQuestionIndex
}

// Clone returns a deep copy so callers can hold on to a snapshot while the
// machine keeps mutating.
func (s State) Clone() State {
	out := s
	if s.CandidateInfo != nil {
		ci := *s.CandidateInfo
		out.CandidateInfo = &ci
	}
	out.Questions = append([]Question{}, s.Questions...)
	out.Answers = append([]Answer{}, s.Answers...)
	if s.FinalScore != nil {
		v := *s.FinalScore
		out.FinalScore = &v
	}
	if s.Summary != nil {
		v := *s.Summary
		out.Summary = &v
	}
	return out
}
