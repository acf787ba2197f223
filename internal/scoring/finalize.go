package scoring

import (
	"context"
	"fmt"

	"github.com/abhisek/intervue/internal/interview"
)

// Finalize scores a session waiting for its score and completes it. It is
// the only path by which a presenter should call CompleteInterview.
func Finalize(ctx context.Context, m *interview.Machine, s Scorer) (interview.View, error) {
	v := m.View()
	if v.Phase != interview.PhaseAwaitingScore {
		return v, fmt.Errorf("finalize: session is %s, not awaiting a score: %w", v.Phase, interview.ErrInvalidState)
	}

	t, err := TranscriptFrom(v.State)
	if err != nil {
		return v, fmt.Errorf("finalize: %w", err)
	}
	r, err := s.Score(ctx, t)
	if err != nil {
		return v, fmt.Errorf("finalize: %w", err)
	}
	return m.CompleteInterview(ctx, r.Score, r.Summary)
}
