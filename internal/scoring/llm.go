package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/llm"
)

// LLMConfig tunes the model call.
type LLMConfig struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds the whole call including retries. Zero means none.
	Timeout time.Duration
}

// DefaultLLMConfig returns conservative generation settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{MaxTokens: 512, Temperature: 0.2}
}

// LLM asks a language model to grade the transcript.
type LLM struct {
	provider llm.Provider
	cfg      LLMConfig
}

func NewLLM(provider llm.Provider, cfg LLMConfig) *LLM {
	return &LLM{provider: provider, cfg: cfg}
}

// VerdictSchema is the structured output the model must return.
var VerdictSchema = &llm.Schema{
	Name:        "interview-verdict",
	Description: "Overall score and written summary for a technical interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"description": "Overall score from 0 to 100",
				"minimum":     0,
				"maximum":     100,
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "Two to four sentences on strengths and gaps",
			},
		},
		"required":             []string{"score", "summary"},
		"additionalProperties": false,
	},
}

func (s *LLM) Score(ctx context.Context, t Transcript) (Result, error) {
	ctx = llm.WithSession(llm.WithPurpose(ctx, "interview-score"), t.SessionID)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(t)
	if err != nil {
		return Result{}, fmt.Errorf("build scoring prompt: %w", err)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      scoringSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:      VerdictSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("LLM scoring failed: %w", err)
	}

	var out Result
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Result{}, fmt.Errorf("parse scoring response: %w", err)
	}
	out.Score = clampScore(out.Score)
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return Result{}, fmt.Errorf("scoring response has an empty summary")
	}
	return out, nil
}

const scoringSystemPrompt = `You are a senior engineer grading a timed technical screening interview.

Instructions:
- Score the whole interview from 0 to 100.
- Harder questions carry more weight than easy ones.
- An answer of "[No answer provided]" means the candidate ran out of time; it earns nothing.
- Judge technical accuracy and depth, not grammar or length alone.
- Write the summary in the third person, two to four sentences.`

var scoringUserTemplate = template.Must(template.New("transcript").Parse(`Candidate: {{.Candidate.Name}}

{{range $e := .Entries}}Question [{{$e.Question.ID}}] ({{$e.Question.Difficulty}}, {{$e.Question.TimeLimitSeconds}}s limit, {{$e.Answer.TimeUsedSeconds}}s used):
{{$e.Question.Text}}
Answer:
{{$e.Answer.Text}}

{{end}}`))

func buildPrompt(t Transcript) (string, error) {
	var buf bytes.Buffer
	if err := scoringUserTemplate.Execute(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fallback tries Primary and, if it fails, scores with Secondary so a
// provider outage never strands a finished session.
type Fallback struct {
	Primary   Scorer
	Secondary Scorer
	Log       *zap.Logger
}

func (f Fallback) Score(ctx context.Context, t Transcript) (Result, error) {
	r, err := f.Primary.Score(ctx, t)
	if err == nil {
		return r, nil
	}
	if ctx.Err() != nil {
		return Result{}, err
	}
	if f.Log != nil {
		f.Log.Warn("primary scorer failed; using fallback", zap.String("session_id", t.SessionID), zap.Error(err))
	}
	return f.Secondary.Score(ctx, t)
}
