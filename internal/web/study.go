package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/study"
)

type cardView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Context  string `json:"context,omitempty"`
}

// sessionView is the wire form of study.State. The answer and context are
// withheld until the card is revealed.
type sessionView struct {
	Phase      string               `json:"phase"`
	Outcome    string               `json:"outcome"`
	DeckID     string               `json:"deckId"`
	DeckName   string               `json:"deckName"`
	Card       *cardView            `json:"card,omitempty"`
	ShowAnswer bool                 `json:"showAnswer"`
	Index      int                  `json:"index"`
	Remaining  int                  `json:"remaining"`
	TotalCards int                  `json:"totalCards"`
	Lives      int                  `json:"lives"`
	Correct    int                  `json:"correct"`
	Incorrect  int                  `json:"incorrect"`
	Summary    *domain.StudySession `json:"summary,omitempty"`
	Error      string               `json:"error,omitempty"`
}

func viewOf(st study.State) sessionView {
	v := sessionView{
		Phase:      st.Phase.String(),
		Outcome:    st.Outcome.String(),
		DeckID:     st.DeckID,
		DeckName:   st.DeckName,
		ShowAnswer: st.ShowAnswer,
		Index:      st.Index,
		Remaining:  st.Remaining,
		TotalCards: st.TotalCards,
		Lives:      st.Lives,
		Correct:    st.Correct,
		Incorrect:  st.Incorrect,
		Summary:    st.Summary,
	}
	if st.Card != nil {
		v.Card = &cardView{ID: st.Card.ID, Question: st.Card.Question}
		if st.ShowAnswer {
			v.Card.Answer = st.Card.Answer
			v.Card.Context = st.Card.Context
		}
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	runner := study.NewRunner(s.store, s.store, s.stats, s.logger, s.studyOpts...)

	s.mu.Lock()
	s.session = runner
	s.mu.Unlock()

	st, err := runner.Start(r.Context(), chi.URLParam(r, "deckID"))
	s.respondState(w, r, st, err)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	runner, err := s.active()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(runner.State()))
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	runner := s.session
	s.session = nil
	s.mu.Unlock()

	if runner == nil {
		s.respondErr(w, r, errNoSession)
		return
	}
	st := runner.State()
	s.logger.Info("study session abandoned", "deck_id", st.DeckID, "phase", st.Phase.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	runner, err := s.active()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	st, err := runner.Reveal(r.Context())
	s.respondState(w, r, st, err)
}

type answerRequest struct {
	Correct *bool `json:"correct"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil || req.Correct == nil {
		respondError(w, http.StatusBadRequest, `body must be {"correct": true|false}`)
		return
	}
	runner, err := s.active()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	st, err := runner.Answer(r.Context(), *req.Correct)
	s.respondState(w, r, st, err)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	runner, err := s.active()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	st, err := runner.Restart(r.Context())
	s.respondState(w, r, st, err)
}

func (s *Server) active() (*study.Runner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, errNoSession
	}
	return s.session, nil
}

// respondState writes the session view, using the error's status when the
// command failed. The body always carries the current state.
func (s *Server) respondState(w http.ResponseWriter, r *http.Request, st study.State, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("study command failed", "path", r.URL.Path, "error", err)
		}
	}
	respondJSON(w, status, viewOf(st))
}
