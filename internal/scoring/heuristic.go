package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/intervue/internal/interview"
)

// tierWeight makes harder questions count for more.
var tierWeight = map[interview.Difficulty]float64{
	interview.DifficultyEasy:   1,
	interview.DifficultyMedium: 2,
	interview.DifficultyHard:   3,
}

// expectedWords is the answer length that earns full depth credit.
var expectedWords = map[interview.Difficulty]int{
	interview.DifficultyEasy:   15,
	interview.DifficultyMedium: 30,
	interview.DifficultyHard:   50,
}

// Heuristic is an offline scorer. Each answer earns depth credit from its
// length relative to the tier's expectation, capped at one; timed-out and
// blank answers earn nothing. Credits are weighted by difficulty.
type Heuristic struct{}

func (Heuristic) Score(_ context.Context, t Transcript) (Result, error) {
	if len(t.Entries) == 0 {
		return Result{}, fmt.Errorf("empty transcript")
	}

	var earned, possible float64
	perTier := map[interview.Difficulty][2]int{} // answered, total
	for _, e := range t.Entries {
		w := tierWeight[e.Question.Difficulty]
		if w == 0 {
			w = 1
		}
		possible += w
		c := perTier[e.Question.Difficulty]
		c[1]++

		credit := answerCredit(e)
		if credit > 0 {
			c[0]++
		}
		perTier[e.Question.Difficulty] = c
		earned += w * credit
	}

	score := clampScore(100 * earned / possible)
	return Result{Score: score, Summary: heuristicSummary(t, score, perTier)}, nil
}

func answerCredit(e Entry) float64 {
	if e.Answer.TimedOut() {
		return 0
	}
	words := len(strings.Fields(e.Answer.Text))
	if words == 0 {
		return 0
	}
	want := expectedWords[e.Question.Difficulty]
	if want == 0 {
		want = 20
	}
	return math.Min(1, float64(words)/float64(want))
}

func heuristicSummary(t Transcript, score float64, perTier map[interview.Difficulty][2]int) string {
	var b strings.Builder
	name := t.Candidate.Name
	if name == "" {
		name = "The candidate"
	}
	fmt.Fprintf(&b, "%s answered %d of %d questions", name, t.Answered(), len(t.Entries))

	var parts []string
	for _, d := range []interview.Difficulty{interview.DifficultyEasy, interview.DifficultyMedium, interview.DifficultyHard} {
		if c, ok := perTier[d]; ok {
			parts = append(parts, fmt.Sprintf("%s %d/%d", d, c[0], c[1]))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString(". ")

	switch {
	case score >= 80:
		b.WriteString("Answers were consistently thorough.")
	case score >= 50:
		b.WriteString("Answers covered the basics but lacked depth in places.")
	case t.Answered() == 0:
		b.WriteString("No questions were answered before time ran out.")
	default:
		b.WriteString("Most answers were missing or too brief to assess.")
	}
	return b.String()
}
