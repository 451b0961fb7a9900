package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/conorfennell/flashdeck/internal/deck"
	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/stats"
)

// defaultRecent is how many sessions /api/stats lists unless ?recent= is given.
const defaultRecent = 5

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.decks.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, decks)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.decks.Categories(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	d, err := s.decks.Get(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var in deck.DeckInput
	if err := decodeJSON(r, &in); err != nil {
		s.respondErr(w, r, err)
		return
	}
	d, err := s.decks.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	var in deck.DeckInput
	if err := decodeJSON(r, &in); err != nil {
		s.respondErr(w, r, err)
		return
	}
	d, err := s.decks.Update(r.Context(), chi.URLParam(r, "deckID"), in)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.decks.Delete(r.Context(), chi.URLParam(r, "deckID")); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var in deck.CardInput
	if err := decodeJSON(r, &in); err != nil {
		s.respondErr(w, r, err)
		return
	}
	card, err := s.decks.AddCard(r.Context(), chi.URLParam(r, "deckID"), in)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var in deck.CardInput
	if err := decodeJSON(r, &in); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.decks.UpdateCard(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), in); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request) {
	if err := s.decks.RemoveCard(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID")); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statsResponse struct {
	Totals   domain.UserStats      `json:"totals"`
	Recent   []stats.RecentSession `json:"recent"`
	Progress []stats.Progress      `json:"progress"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	n := defaultRecent
	if v := r.URL.Query().Get("recent"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "recent must be a non-negative integer")
			return
		}
		n = parsed
	}
	recent, err := s.stats.Recent(ctx, s.store, n)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	progress, err := s.stats.DeckProgress(ctx, s.store)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{Totals: totals, Recent: recent, Progress: progress})
}

type importRequest struct {
	Source string `json:"source"`
}

type importResponse struct {
	Decks   int      `json:"decks"`
	Cards   int      `json:"cards"`
	Added   int      `json:"added"`
	Removed int      `json:"removed"`
	Errors  []string `json:"errors"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil || req.Source == "" {
		respondError(w, http.StatusBadRequest, "source is required")
		return
	}
	report, err := s.importer.Import(r.Context(), req.Source)
	if err != nil {
		s.logger.Warn("import failed", "source", req.Source, "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	resp := importResponse{
		Decks:   report.Decks,
		Cards:   report.Cards,
		Added:   report.Added,
		Removed: report.Removed,
		Errors:  []string{},
	}
	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	respondJSON(w, http.StatusOK, resp)
}
