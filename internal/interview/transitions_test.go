package interview

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testCandidate() CandidateInfo {
	return CandidateInfo{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0000"}
}

func twoQuestions() []Question {
	return []Question{
		{ID: "1", Text: "Tell me about React hooks.", Difficulty: DifficultyEasy, TimeLimitSeconds: 20},
		{ID: "2", Text: "State versus props?", Difficulty: DifficultyEasy, TimeLimitSeconds: 20},
	}
}

// mustState fails the test if a transition errors, otherwise it returns
// the next state: mustState(t)(Advance(s)).
func mustState(t *testing.T) func(State, error) State {
	t.Helper()
	return func(s State, err error) State {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return s
	}
}

func startedState(t *testing.T, qs []Question) State {
	t.Helper()
	s := mustState(t)(SetCandidateInfo(Idle(), testCandidate()))
	return mustState(t)(StartInterview(s, qs))
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want %v", err, kind)
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("error %T is not a *TransitionError", err)
	}
}

func TestSetCandidateInfo_FromIdle(t *testing.T) {
	s := mustState(t)(SetCandidateInfo(Idle(), CandidateInfo{Name: " Ada ", Email: "ada@example.com", Phone: "123"}))
	if s.Phase() != PhaseAwaitingStart {
		t.Errorf("phase = %s, want awaiting_start", s.Phase())
	}
	if s.CandidateInfo.Name != "Ada" {
		t.Errorf("name = %q, want trimmed", s.CandidateInfo.Name)
	}
}

func TestSetCandidateInfo_Validation(t *testing.T) {
	tests := []struct {
		name string
		info CandidateInfo
	}{
		{"missing name", CandidateInfo{Email: "a@b.co", Phone: "1"}},
		{"blank name", CandidateInfo{Name: "   ", Email: "a@b.co", Phone: "1"}},
		{"missing email", CandidateInfo{Name: "A", Phone: "1"}},
		{"malformed email", CandidateInfo{Name: "A", Email: "not-an-email", Phone: "1"}},
		{"missing phone", CandidateInfo{Name: "A", Email: "a@b.co"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := Idle()
			after, err := SetCandidateInfo(before, tt.info)
			assertKind(t, err, ErrValidation)
			if after.CandidateInfo != nil {
				t.Error("state changed on rejected call")
			}
		})
	}
}

func TestSetCandidateInfo_RejectedWhileActive(t *testing.T) {
	s := startedState(t, twoQuestions())
	_, err := SetCandidateInfo(s, testCandidate())
	assertKind(t, err, ErrInvalidState)
}

func TestStartInterview_ResetsProgress(t *testing.T) {
	qs := []Question{
		{ID: "a", Text: "A?", Difficulty: DifficultyMedium, TimeLimitSeconds: 60},
		{ID: "b", Text: "B?", Difficulty: DifficultyHard, TimeLimitSeconds: 120},
	}
	s := startedState(t, qs)

	if s.CurrentQuestionIndex != 0 {
		t.Errorf("index = %d, want 0", s.CurrentQuestionIndex)
	}
	if s.TimeRemainingSeconds != 60 {
		t.Errorf("time remaining = %d, want 60", s.TimeRemainingSeconds)
	}
	if !s.IsActive || !s.IsTimerRunning {
		t.Error("expected active session with running timer")
	}
	if len(s.Answers) != 0 {
		t.Errorf("answers = %d, want 0", len(s.Answers))
	}
	if s.FinalScore != nil || s.Summary != nil {
		t.Error("score and summary should be cleared")
	}
}

func TestStartInterview_RequiresCandidate(t *testing.T) {
	_, err := StartInterview(Idle(), twoQuestions())
	assertKind(t, err, ErrInvalidState)
}

func TestStartInterview_RejectsBadQuestions(t *testing.T) {
	base := mustState(t)(SetCandidateInfo(Idle(), testCandidate()))
	tests := []struct {
		name string
		qs   []Question
	}{
		{"empty", nil},
		{"duplicate ids", []Question{
			{ID: "1", Text: "a", Difficulty: DifficultyEasy, TimeLimitSeconds: 10},
			{ID: "1", Text: "b", Difficulty: DifficultyEasy, TimeLimitSeconds: 10},
		}},
		{"missing id", []Question{{Text: "a", Difficulty: DifficultyEasy, TimeLimitSeconds: 10}}},
		{"missing text", []Question{{ID: "1", Difficulty: DifficultyEasy, TimeLimitSeconds: 10}}},
		{"unknown difficulty", []Question{{ID: "1", Text: "a", Difficulty: "brutal", TimeLimitSeconds: 10}}},
		{"zero time limit", []Question{{ID: "1", Text: "a", Difficulty: DifficultyEasy}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, err := StartInterview(base, tt.qs)
			assertKind(t, err, ErrInvalidArgument)
			if after.IsActive {
				t.Error("state changed on rejected call")
			}
		})
	}
}

func TestStartInterview_FromCompleteClearsPriorSession(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(HandleTimeout(s, time.Now()))
	s = mustState(t)(HandleTimeout(s, time.Now()))
	s = mustState(t)(CompleteInterview(s, 40, "weak"))

	s = mustState(t)(StartInterview(s, twoQuestions()))
	if len(s.Answers) != 0 || s.FinalScore != nil || s.Summary != nil || s.IsComplete {
		t.Errorf("restart kept prior progress: %+v", s)
	}
	if s.CandidateInfo == nil {
		t.Error("candidate should survive a restart from complete")
	}
}

func TestSubmitThenAdvanceMovesToNextQuestion(t *testing.T) {
	s := startedState(t, twoQuestions())
	if s.TimeRemainingSeconds != 20 {
		t.Fatalf("time remaining = %d, want 20", s.TimeRemainingSeconds)
	}

	s = mustState(t)(SubmitAnswer(s, Answer{QuestionID: "1", Text: "hi", TimeUsedSeconds: 5, SubmittedAt: time.Now()}))
	s = mustState(t)(Advance(s))

	if s.CurrentQuestionIndex != 1 {
		t.Errorf("index = %d, want 1", s.CurrentQuestionIndex)
	}
	if s.TimeRemainingSeconds != 20 {
		t.Errorf("time remaining = %d, want 20", s.TimeRemainingSeconds)
	}
	if len(s.Answers) != 1 || s.Answers[0].QuestionID != "1" || s.Answers[0].Text != "hi" {
		t.Errorf("answers = %+v", s.Answers)
	}
	if !s.IsTimerRunning {
		t.Error("timer should be re-armed for question 2")
	}
}

func TestTimeoutOnLastQuestionAwaitsScore(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(SubmitAnswer(s, Answer{QuestionID: "1", Text: "hi", TimeUsedSeconds: 5}))
	s = mustState(t)(Advance(s))

	s = mustState(t)(Tick(s, 0))
	if s.TimeRemainingSeconds != 0 || len(s.Answers) != 1 {
		t.Fatalf("tick must not submit: %+v", s)
	}
	s = mustState(t)(HandleTimeout(s, time.Now()))

	if s.IsActive {
		t.Error("session should be inactive")
	}
	if s.Phase() != PhaseAwaitingScore {
		t.Errorf("phase = %s, want awaiting_score", s.Phase())
	}
	if len(s.Answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(s.Answers))
	}
	last := s.Answers[1]
	if last.QuestionID != "2" || last.Text != NoAnswerText || last.TimeUsedSeconds != 20 || !last.TimedOut() {
		t.Errorf("timeout answer = %+v", last)
	}
	if len(s.Questions) != 2 {
		t.Error("questions must remain available for the scorer")
	}
}

func TestCompleteFromAwaitingScore(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(HandleTimeout(s, time.Now()))
	s = mustState(t)(HandleTimeout(s, time.Now()))

	s = mustState(t)(CompleteInterview(s, 85, "Good grasp of fundamentals"))
	if !s.IsComplete || s.IsActive {
		t.Errorf("complete=%v active=%v", s.IsComplete, s.IsActive)
	}
	if s.FinalScore == nil || *s.FinalScore != 85 {
		t.Errorf("score = %v, want 85", s.FinalScore)
	}
	if s.Summary == nil || *s.Summary != "Good grasp of fundamentals" {
		t.Errorf("summary = %v", s.Summary)
	}

	_, err := CompleteInterview(s, 10, "again")
	assertKind(t, err, ErrInvalidState)
}

func TestCompleteWhileActiveChangesNothing(t *testing.T) {
	s := startedState(t, twoQuestions())
	before := s.Clone()

	after, err := CompleteInterview(s, 85, "too early")
	assertKind(t, err, ErrInvalidState)
	if after.FinalScore != nil || after.IsComplete || !after.IsActive {
		t.Errorf("state changed: %+v", after)
	}
	if after.TimeRemainingSeconds != before.TimeRemainingSeconds || len(after.Answers) != len(before.Answers) {
		t.Error("state changed on rejected call")
	}

	_, err = CompleteInterview(Idle(), 1, "idle")
	assertKind(t, err, ErrInvalidState)
}

func TestCompleteRejectsNonFiniteScore(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(HandleTimeout(s, time.Now()))
	s = mustState(t)(HandleTimeout(s, time.Now()))

	for _, score := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		after, err := CompleteInterview(s, score, "x")
		assertKind(t, err, ErrInvalidArgument)
		if after.IsComplete || after.FinalScore != nil {
			t.Errorf("score %v: state changed on rejected call", score)
		}
	}
}

func TestSubmitAnswer_DuplicateRejected(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(SubmitAnswer(s, Answer{QuestionID: "1", Text: "first", TimeUsedSeconds: 3}))

	after, err := SubmitAnswer(s, Answer{QuestionID: "1", Text: "second", TimeUsedSeconds: 4})
	assertKind(t, err, ErrInvalidState)
	if len(after.Answers) != 1 || after.Answers[0].Text != "first" {
		t.Errorf("answers = %+v", after.Answers)
	}

	_, err = HandleTimeout(s, time.Now())
	assertKind(t, err, ErrInvalidState)
}

func TestSubmitAnswer_Arguments(t *testing.T) {
	s := startedState(t, twoQuestions())

	_, err := SubmitAnswer(s, Answer{QuestionID: "2", Text: "wrong question"})
	assertKind(t, err, ErrInvalidArgument)

	_, err = SubmitAnswer(s, Answer{QuestionID: "1", Text: "x", TimeUsedSeconds: 21})
	assertKind(t, err, ErrInvalidArgument)

	_, err = SubmitAnswer(s, Answer{QuestionID: "1", Text: "x", TimeUsedSeconds: -1})
	assertKind(t, err, ErrInvalidArgument)
}

func TestSubmitAnswer_StopsTimer(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(SubmitAnswer(s, Answer{QuestionID: "1", Text: "x", TimeUsedSeconds: 1}))
	if s.IsTimerRunning {
		t.Error("timer should stop once an answer is pending")
	}
	_, err := Tick(s, 5)
	assertKind(t, err, ErrInvalidState)
	_, err = SetTimerActive(s, true)
	assertKind(t, err, ErrInvalidState)
}

func TestAdvance_RequiresAnswer(t *testing.T) {
	s := startedState(t, twoQuestions())
	_, err := Advance(s)
	assertKind(t, err, ErrInvalidState)
}

func TestAdvance_IndexProperty(t *testing.T) {
	qs := []Question{
		{ID: "1", Text: "a", Difficulty: DifficultyEasy, TimeLimitSeconds: 20},
		{ID: "2", Text: "b", Difficulty: DifficultyMedium, TimeLimitSeconds: 60},
		{ID: "3", Text: "c", Difficulty: DifficultyHard, TimeLimitSeconds: 120},
	}
	s := startedState(t, qs)

	for i, q := range qs {
		if len(s.Answers) != s.CurrentQuestionIndex {
			t.Fatalf("answers=%d index=%d before question %d", len(s.Answers), s.CurrentQuestionIndex, i)
		}
		if s.TimeRemainingSeconds != q.TimeLimitSeconds {
			t.Errorf("question %d time = %d, want %d", i, s.TimeRemainingSeconds, q.TimeLimitSeconds)
		}
		s = mustState(t)(SubmitAnswer(s, Answer{QuestionID: q.ID, Text: "ok", TimeUsedSeconds: 1}))
		s = mustState(t)(Advance(s))

		if i+1 < len(qs) {
			if s.CurrentQuestionIndex != i+1 || !s.IsActive {
				t.Errorf("after %d: index=%d active=%v", i, s.CurrentQuestionIndex, s.IsActive)
			}
		} else {
			if s.IsActive || s.IsTimerRunning || s.Phase() != PhaseAwaitingScore {
				t.Errorf("after last: active=%v timer=%v phase=%s", s.IsActive, s.IsTimerRunning, s.Phase())
			}
		}
		if s.CurrentQuestionIndex > len(qs) {
			t.Fatalf("index %d exceeds question count", s.CurrentQuestionIndex)
		}
	}
}

func TestTick_ClampsAndRequiresRunningTimer(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(Tick(s, -3))
	if s.TimeRemainingSeconds != 0 {
		t.Errorf("time remaining = %d, want 0", s.TimeRemainingSeconds)
	}

	paused := mustState(t)(SetTimerActive(s, false))
	_, err := Tick(paused, 10)
	assertKind(t, err, ErrInvalidState)

	_, err = Tick(Idle(), 10)
	assertKind(t, err, ErrInvalidState)
}

func TestSetTimerActive_KeepsRemainingTime(t *testing.T) {
	s := startedState(t, twoQuestions())
	s = mustState(t)(Tick(s, 13))
	s = mustState(t)(SetTimerActive(s, false))
	if s.IsTimerRunning || s.TimeRemainingSeconds != 13 {
		t.Errorf("paused: running=%v remaining=%d", s.IsTimerRunning, s.TimeRemainingSeconds)
	}
	s = mustState(t)(SetTimerActive(s, true))
	if !s.IsTimerRunning || s.TimeRemainingSeconds != 13 {
		t.Errorf("resumed: running=%v remaining=%d", s.IsTimerRunning, s.TimeRemainingSeconds)
	}

	_, err := SetTimerActive(Idle(), true)
	assertKind(t, err, ErrInvalidState)
}

func TestResetInterview_Idempotent(t *testing.T) {
	s := startedState(t, twoQuestions())
	once := ResetInterview(s)
	twice := ResetInterview(once)

	for _, st := range []State{once, twice} {
		if st.Phase() != PhaseIdle || st.CandidateInfo != nil || len(st.Questions) != 0 || len(st.Answers) != 0 {
			t.Errorf("reset state = %+v", st)
		}
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	s := startedState(t, twoQuestions())
	_ = mustState(t)(SubmitAnswer(s, Answer{QuestionID: "1", Text: "x", TimeUsedSeconds: 1}))
	if len(s.Answers) != 0 || !s.IsTimerRunning {
		t.Error("SubmitAnswer mutated its input state")
	}
}

func TestActiveAndCompleteNeverBothTrue(t *testing.T) {
	s := startedState(t, twoQuestions())
	steps := []func(State) (State, error){
		func(s State) (State, error) { return Tick(s, 10) },
		func(s State) (State, error) { return HandleTimeout(s, time.Now()) },
		func(s State) (State, error) { return HandleTimeout(s, time.Now()) },
		func(s State) (State, error) { return CompleteInterview(s, 50, "ok") },
	}
	for i, step := range steps {
		s = mustState(t)(step(s))
		if s.IsActive && s.IsComplete {
			t.Fatalf("step %d: active and complete both true", i)
		}
	}
}
