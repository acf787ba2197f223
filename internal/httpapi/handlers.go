package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/questionbank"
	"github.com/abhisek/intervue/internal/scoring"
	"github.com/abhisek/intervue/internal/store"
)

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	v := s.machine.View()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"phase":               v.Phase,
		"persistenceDegraded": v.Degraded,
	})
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.View())
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusOK, []store.Event{})
		return
	}
	opts := store.QueryOpts{Limit: 100}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.badRequest(w, fmt.Errorf("limit must be a positive integer"))
			return
		}
		opts.Limit = n
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = s.machine.View().State.SessionID
	}
	evs, err := s.events.List(r.Context(), sessionID, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if evs == nil {
		evs = []store.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}

func (s *Server) setCandidate(w http.ResponseWriter, r *http.Request) {
	var info interview.CandidateInfo
	if err := decode(r, &info); err != nil {
		s.badRequest(w, err)
		return
	}
	v, err := s.machine.SetCandidateInfo(r.Context(), info)
	s.reply(w, r, v, err)
}

type startRequest struct {
	Questions []interview.Question `json:"questions,omitempty"`
}

// start begins the interview with the posted questions, or with the
// configured question source when none are posted.
func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	var src questionbank.Source = s.questions
	if len(req.Questions) > 0 {
		src = questionbank.Static(req.Questions)
	}
	qs, err := src.Questions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := s.machine.StartInterview(r.Context(), qs)
	s.reply(w, r, v, err)
}

type answerRequest struct {
	Text string `json:"text"`
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	v, err := s.machine.Answer(r.Context(), req.Text)
	s.reply(w, r, v, err)
}

func (s *Server) timeout(w http.ResponseWriter, r *http.Request) {
	v, err := s.machine.HandleTimeout(r.Context())
	s.reply(w, r, v, err)
}

type timerRequest struct {
	Running *bool `json:"running"`
}

func (s *Server) setTimer(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if req.Running == nil {
		s.badRequest(w, fmt.Errorf("running is required"))
		return
	}
	v, err := s.machine.SetTimerActive(r.Context(), *req.Running)
	s.reply(w, r, v, err)
}

type resumeRequest struct {
	Choice interview.ResumeChoice `json:"choice"`
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	v, err := s.machine.ResumeOrRestart(r.Context(), req.Choice)
	s.reply(w, r, v, err)
}

type completeRequest struct {
	Score   *float64 `json:"score"`
	Summary string   `json:"summary"`
}

// complete records a score computed outside this process.
func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if req.Score == nil {
		s.badRequest(w, fmt.Errorf("score is required"))
		return
	}
	v, err := s.machine.CompleteInterview(r.Context(), *req.Score, req.Summary)
	s.reply(w, r, v, err)
}

// score runs the configured scorer and completes the session.
func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	v, err := scoring.Finalize(r.Context(), s.machine, s.scorer)
	s.reply(w, r, v, err)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	v, err := s.machine.ResetInterview(r.Context())
	s.reply(w, r, v, err)
}
