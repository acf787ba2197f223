package interview

import (
	"math"
	"net/mail"
	"strings"
	"time"
)

// Operation names used in errors, audit events and metrics.
const (
	OpSetCandidate    = "set_candidate"
	OpStart           = "start"
	OpSubmitAnswer    = "submit_answer"
	OpAdvance         = "advance"
	OpTick            = "tick"
	OpTimeout         = "timeout"
	OpSetTimerActive  = "set_timer_active"
	OpComplete        = "complete"
	OpReset           = "reset"
	OpResumeOrRestart = "resume_or_restart"
)

// SetCandidateInfo records who is being interviewed. It is accepted before
// questions are loaded; a candidate that has not started yet may be replaced.
func SetCandidateInfo(s State, info CandidateInfo) (State, error) {
	switch s.Phase() {
	case PhaseIdle, PhaseAwaitingStart:
	default:
		return s, invalidState(OpSetCandidate, s, "candidate can only be set before the interview starts")
	}

	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.ResumeRef = strings.TrimSpace(info.ResumeRef)

	switch {
	case info.Name == "":
		return s, validation(OpSetCandidate, s, "name is required")
	case info.Email == "":
		return s, validation(OpSetCandidate, s, "email is required")
	case info.Phone == "":
		return s, validation(OpSetCandidate, s, "phone is required")
	}
	if _, err := mail.ParseAddress(info.Email); err != nil {
		return s, validation(OpSetCandidate, s, "email %q is malformed", info.Email)
	}

	next := s.Clone()
	next.CandidateInfo = &info
	return next, nil
}

// ValidateQuestions checks the structural requirements on a question list.
func ValidateQuestions(questions []Question) error {
	return validateQuestions(Idle(), questions)
}

func validateQuestions(s State, questions []Question) error {
	if len(questions) == 0 {
		return invalidArgument(OpStart, s, "question list is empty")
	}
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		switch {
		case strings.TrimSpace(q.ID) == "":
			return invalidArgument(OpStart, s, "question %d has no id", i)
		case seen[q.ID]:
			return invalidArgument(OpStart, s, "duplicate question id %q", q.ID)
		case strings.TrimSpace(q.Text) == "":
			return invalidArgument(OpStart, s, "question %q has no text", q.ID)
		case !q.Difficulty.Valid():
			return invalidArgument(OpStart, s, "question %q has unknown difficulty %q", q.ID, q.Difficulty)
		case q.TimeLimitSeconds <= 0:
			return invalidArgument(OpStart, s, "question %q has non-positive time limit %d", q.ID, q.TimeLimitSeconds)
		}
		seen[q.ID] = true
	}
	return nil
}

// StartInterview loads the question list and resets all progress. It is
// valid once a candidate is known, and again after a completed interview.
func StartInterview(s State, questions []Question) (State, error) {
	switch s.Phase() {
	case PhaseAwaitingStart, PhaseComplete:
	default:
		return s, invalidState(OpStart, s, "interview can only start with a candidate and no session in flight")
	}
	if err := validateQuestions(s, questions); err != nil {
		return s, err
	}

	next := s.Clone()
	next.SessionID = ""
	next.Questions = append([]Question{}, questions...)
	next.CurrentQuestionIndex = 0
	next.Answers = []Answer{}
	next.IsActive = true
	next.IsComplete = false
	next.TimeRemainingSeconds = questions[0].TimeLimitSeconds
	next.IsTimerRunning = true
	next.FinalScore = nil
	next.Summary = nil
	return next, nil
}

// SubmitAnswer appends the answer for the current question and stops the
// timer until Advance arms it for the next one. At most one answer is
// accepted per question index.
func SubmitAnswer(s State, a Answer) (State, error) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return s, invalidState(OpSubmitAnswer, s, "no question is awaiting an answer")
	}
	if s.AnswerPending() {
		return s, invalidState(OpSubmitAnswer, s, "question "+q.ID+" has already been answered")
	}
	if a.QuestionID != q.ID {
		return s, invalidArgument(OpSubmitAnswer, s, "answer is for question %q, current question is %q", a.QuestionID, q.ID)
	}
	if a.TimeUsedSeconds < 0 || a.TimeUsedSeconds > q.TimeLimitSeconds {
		return s, invalidArgument(OpSubmitAnswer, s, "time used %d is outside 0..%d", a.TimeUsedSeconds, q.TimeLimitSeconds)
	}

	next := s.Clone()
	next.Answers = append(next.Answers, a)
	next.IsTimerRunning = false
	return next, nil
}

// Advance moves past an answered question. After the last question the
// session stops accepting input and waits for a score; answers and
// questions are kept for the scorer.
func Advance(s State) (State, error) {
	if !s.IsActive {
		return s, invalidState(OpAdvance, s, "session is not active")
	}
	if !s.AnswerPending() {
		return s, invalidState(OpAdvance, s, "current question has not been answered")
	}

	next := s.Clone()
	next.CurrentQuestionIndex++
	if next.CurrentQuestionIndex < len(next.Questions) {
		next.TimeRemainingSeconds = next.Questions[next.CurrentQuestionIndex].TimeLimitSeconds
		next.IsTimerRunning = true
		return next, nil
	}

	next.IsActive = false
	next.IsTimerRunning = false
	next.TimeRemainingSeconds = 0
	return next, nil
}

// Tick records the countdown's new remaining time. Expiry handling belongs
// to the caller; Tick never submits anything.
func Tick(s State, remaining int) (State, error) {
	if !s.IsActive || !s.IsTimerRunning {
		return s, invalidState(OpTick, s, "timer is not running")
	}
	if remaining < 0 {
		remaining = 0
	}
	next := s.Clone()
	next.TimeRemainingSeconds = remaining
	return next, nil
}

// HandleTimeout records the sentinel answer for the current question with
// its full time limit used, then advances.
func HandleTimeout(s State, now time.Time) (State, error) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return s, invalidState(OpTimeout, s, "no question is awaiting an answer")
	}
	if s.AnswerPending() {
		return s, invalidState(OpTimeout, s, "question "+q.ID+" has already been answered")
	}

	next, err := SubmitAnswer(s, Answer{
		QuestionID:      q.ID,
		Text:            NoAnswerText,
		TimeUsedSeconds: q.TimeLimitSeconds,
		SubmittedAt:     now,
	})
	if err != nil {
		return s, err
	}
	return Advance(next)
}

// SetTimerActive pauses or resumes the countdown without touching the
// remaining time. Resuming is refused while an answer is pending.
func SetTimerActive(s State, active bool) (State, error) {
	if !s.IsActive {
		return s, invalidState(OpSetTimerActive, s, "session is not active")
	}
	if active && s.AnswerPending() {
		return s, invalidState(OpSetTimerActive, s, "cannot resume the timer before advancing")
	}
	next := s.Clone()
	next.IsTimerRunning = active
	return next, nil
}

// CompleteInterview stores the scorer's verdict. Only a session that has
// run out of questions can be completed.
func CompleteInterview(s State, score float64, summary string) (State, error) {
	if s.Phase() != PhaseAwaitingScore {
		return s, invalidState(OpComplete, s, "interview is not awaiting a score")
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return s, invalidArgument(OpComplete, s, "score %v is not a finite number", score)
	}
	next := s.Clone()
	next.FinalScore = &score
	next.Summary = &summary
	next.IsComplete = true
	next.IsActive = false
	next.IsTimerRunning = false
	return next, nil
}

// ResetInterview discards everything, including the candidate.
func ResetInterview(State) State {
	return Idle()
}
