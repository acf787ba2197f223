// Package scoring turns a finished interview into a score and summary and
// records them on the session.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/abhisek/intervue/internal/interview"
)

// Result is a scorer verdict. Score is on a 0-100 scale.
type Result struct {
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

// Scorer evaluates a transcript.
type Scorer interface {
	Score(ctx context.Context, t Transcript) (Result, error)
}

// Entry pairs a question with its recorded answer.
type Entry struct {
	Question interview.Question
	Answer   interview.Answer
}

// Transcript is the scorer's view of a finished session.
type Transcript struct {
	SessionID string
	Candidate interview.CandidateInfo
	Entries   []Entry
}

// TranscriptFrom pairs answers with questions by ID. It requires every
// question to have exactly one answer.
func TranscriptFrom(s interview.State) (Transcript, error) {
	if len(s.Questions) == 0 || len(s.Answers) != len(s.Questions) {
		return Transcript{}, fmt.Errorf("transcript needs one answer per question: have %d of %d",
			len(s.Answers), len(s.Questions))
	}
	byID := make(map[string]interview.Answer, len(s.Answers))
	for _, a := range s.Answers {
		byID[a.QuestionID] = a
	}

	t := Transcript{SessionID: s.SessionID, Entries: make([]Entry, 0, len(s.Questions))}
	if s.CandidateInfo != nil {
		t.Candidate = *s.CandidateInfo
	}
	for _, q := range s.Questions {
		a, ok := byID[q.ID]
		if !ok {
			return Transcript{}, fmt.Errorf("question %q has no answer", q.ID)
		}
		t.Entries = append(t.Entries, Entry{Question: q, Answer: a})
	}
	return t, nil
}

// Answered counts entries that did not time out.
func (t Transcript) Answered() int {
	n := 0
	for _, e := range t.Entries {
		if !e.Answer.TimedOut() {
			n++
		}
	}
	return n
}

// clampScore bounds s to [0, 100] and rounds to one decimal.
func clampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	s = math.Max(0, math.Min(100, s))
	return math.Round(s*10) / 10
}
