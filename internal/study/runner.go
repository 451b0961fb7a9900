package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/storage"
)

// DeckProvider fetches a deck snapshot. Missing decks are reported with an
// error wrapping storage.ErrNotFound.
type DeckProvider interface {
	Get(ctx context.Context, id string) (*domain.Deck, error)
}

// DeckPersister applies fn to the stored deck atomically. A deck that no
// longer exists is reported with an error wrapping storage.ErrNotFound.
type DeckPersister interface {
	Update(ctx context.Context, id string, fn func(*domain.Deck) error) (*domain.Deck, error)
}

// SessionSink records a finished session and returns it with its assigned id.
type SessionSink interface {
	RecordSession(ctx context.Context, summary domain.StudySession) (domain.StudySession, error)
}

// Runner drives a Controller against its collaborators. Effects are applied
// synchronously and in order before the new state is returned, so a Complete
// state is never observed without its deck write and session record.
// Commands are serialized.
type Runner struct {
	mu     sync.Mutex
	ctrl   *Controller
	decks  DeckProvider
	saver  DeckPersister
	sink   SessionSink
	logger *slog.Logger
	deckID string
}

// NewRunner returns a runner with a fresh controller configured by opts.
func NewRunner(decks DeckProvider, saver DeckPersister, sink SessionSink, logger *slog.Logger, opts ...Option) *Runner {
	return &Runner{
		ctrl:   NewController(opts...),
		decks:  decks,
		saver:  saver,
		sink:   sink,
		logger: logger.With("component", "study_runner"),
	}
}

// Start loads the deck and shows its first card.
func (r *Runner) Start(ctx context.Context, deckID string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deckID = deckID
	deck, err := r.fetch(ctx, deckID)
	if err != nil {
		return r.ctrl.Fail(err), err
	}
	res, err := r.ctrl.Load(deck)
	if err != nil {
		r.logger.Warn("study session could not start", "deck_id", deckID, "error", err)
		return res.State, err
	}
	r.logger.Info("study session started", "deck_id", deckID, "cards", res.State.TotalCards)
	return res.State, nil
}

// Reveal shows the current card's answer.
func (r *Runner) Reveal(ctx context.Context) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.ctrl.Reveal()
	if err != nil {
		return res.State, err
	}
	return r.apply(ctx, res)
}

// Answer records the outcome for the current card.
func (r *Runner) Answer(ctx context.Context, correct bool) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.ctrl.Answer(correct)
	if err != nil {
		r.logger.Error("answer rejected", "deck_id", r.deckID, "error", err)
		return res.State, err
	}
	return r.apply(ctx, res)
}

// Restart re-reads the deck and starts over.
func (r *Runner) Restart(ctx context.Context) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.ctrl.State().Phase {
	case PhaseLoading, PhaseError:
		res, err := r.ctrl.Restart(nil)
		return res.State, err
	}
	deck, err := r.fetch(ctx, r.deckID)
	if err != nil {
		return r.ctrl.Fail(err), err
	}
	res, err := r.ctrl.Restart(deck)
	if err != nil {
		return res.State, err
	}
	r.logger.Info("study session restarted", "deck_id", r.deckID)
	return r.apply(ctx, res)
}

// State returns the current session state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.State()
}

func (r *Runner) fetch(ctx context.Context, deckID string) (*domain.Deck, error) {
	deck, err := r.decks.Get(ctx, deckID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deck %s: %w", deckID, err)
	}
	return deck, nil
}

// save merges the session's annotations into the stored deck, so edits made
// to the deck while the session runs are kept.
func (r *Runner) save(ctx context.Context, e SaveDeck) error {
	_, err := r.saver.Update(ctx, e.Deck.ID, func(stored *domain.Deck) error {
		for _, id := range e.CardIDs {
			src := e.Deck.CardIndex(id)
			dst := stored.CardIndex(id)
			if src < 0 || dst < 0 {
				continue
			}
			from, to := e.Deck.Cards[src], &stored.Cards[dst]
			to.LastStudied = from.LastStudied
			to.IsCorrect = from.IsCorrect
			to.TimesCorrect = from.TimesCorrect
			to.TimesIncorrect = from.TimesIncorrect
		}
		if e.Deck.UpdatedAt.After(stored.UpdatedAt) {
			stored.UpdatedAt = e.Deck.UpdatedAt
		}
		return nil
	})
	return err
}

func (r *Runner) apply(ctx context.Context, res Result) (State, error) {
	for _, effect := range res.Effects {
		switch e := effect.(type) {
		case SaveDeck:
			if err := r.save(ctx, e); err != nil {
				err = fmt.Errorf("failed to save deck %s: %w", e.Deck.ID, err)
				r.logger.Error("study session aborted", "deck_id", r.deckID, "error", err)
				return r.ctrl.Fail(err), err
			}
		case RecordSession:
			recorded, err := r.sink.RecordSession(ctx, e.Summary)
			if err != nil {
				err = fmt.Errorf("failed to record session for deck %s: %w", e.Summary.DeckID, err)
				r.logger.Error("study session aborted", "deck_id", r.deckID, "error", err)
				return r.ctrl.Fail(err), err
			}
			r.ctrl.recorded(recorded)
			r.logger.Info("study session complete",
				"deck_id", recorded.DeckID,
				"session_id", recorded.ID,
				"correct", recorded.CorrectAnswers,
				"incorrect", recorded.IncorrectAnswers,
				"accuracy", recorded.Accuracy,
				"failed", recorded.Failed,
			)
		}
	}
	return r.ctrl.State(), nil
}
