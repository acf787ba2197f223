// Package questionbank supplies the ordered question list an interview is
// started with.
package questionbank

import (
	"cmp"
	"context"
	"slices"

	"github.com/abhisek/intervue/internal/interview"
)

// Source produces the questions for a new interview.
type Source interface {
	Questions(ctx context.Context) ([]interview.Question, error)
}

// DefaultTimeLimit returns the countdown for a difficulty tier when a
// question file does not set one.
func DefaultTimeLimit(d interview.Difficulty) int {
	switch d {
	case interview.DifficultyEasy:
		return 20
	case interview.DifficultyMedium:
		return 60
	case interview.DifficultyHard:
		return 120
	}
	return 0
}

// builtinQuestions is the stock full-stack screen: two questions per tier.
var builtinQuestions = []interview.Question{
	{ID: "1", Text: "Tell me about your experience with React hooks.", Difficulty: interview.DifficultyEasy, TimeLimitSeconds: 20},
	{ID: "2", Text: "Explain the difference between state and props in React.", Difficulty: interview.DifficultyEasy, TimeLimitSeconds: 20},
	{ID: "3", Text: "How would you optimize the performance of a React application?", Difficulty: interview.DifficultyMedium, TimeLimitSeconds: 60},
	{ID: "4", Text: "Describe how you would implement authentication in a Node.js application.", Difficulty: interview.DifficultyMedium, TimeLimitSeconds: 60},
	{ID: "5", Text: "Design a scalable API architecture for a high-traffic e-commerce platform.", Difficulty: interview.DifficultyHard, TimeLimitSeconds: 120},
	{ID: "6", Text: "Explain how you would handle real-time data synchronization across multiple clients.", Difficulty: interview.DifficultyHard, TimeLimitSeconds: 120},
}

// Builtin is the source used when no question file is configured.
type Builtin struct{}

func (Builtin) Questions(context.Context) ([]interview.Question, error) {
	return slices.Clone(builtinQuestions), nil
}

// Static serves a fixed list, sequenced by difficulty. Questions without a
// time limit get their tier's default.
type Static []interview.Question

func (s Static) Questions(context.Context) ([]interview.Question, error) {
	qs := slices.Clone([]interview.Question(s))
	for i := range qs {
		if qs[i].TimeLimitSeconds == 0 {
			qs[i].TimeLimitSeconds = DefaultTimeLimit(qs[i].Difficulty)
		}
	}
	Sequence(qs)
	if err := interview.ValidateQuestions(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// Sequence orders questions easy to hard, keeping file order within a tier.
func Sequence(qs []interview.Question) {
	slices.SortStableFunc(qs, func(a, b interview.Question) int {
		return cmp.Compare(a.Difficulty.Rank(), b.Difficulty.Rank())
	})
}
