// Package stats records finished study sessions and derives the aggregate
// statistics shown to the user.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/storage"
)

// UnknownDeck is shown for sessions whose deck has since been deleted.
const UnknownDeck = "Unknown Deck"

// DeckLister lists all decks.
type DeckLister interface {
	List(ctx context.Context) ([]domain.Deck, error)
}

// Recorder appends session summaries and keeps the cumulative user stats.
type Recorder struct {
	mu       sync.Mutex
	sessions *storage.Sessions
	users    *storage.UserStats
	newID    func() string
	logger   *slog.Logger
}

// NewRecorder returns a Recorder persisting to kv.
func NewRecorder(kv storage.KV, logger *slog.Logger) *Recorder {
	return &Recorder{
		sessions: storage.NewSessions(kv),
		users:    storage.NewUserStats(kv),
		newID:    uuid.NewString,
		logger:   logger.With("component", "stats_recorder"),
	}
}

// RecordSession assigns the summary a fresh id, folds it into the running
// totals and appends it to the session log. Totals are written first; if the
// append then fails they are restored, so the log and the totals never
// disagree about which sessions happened.
func (r *Recorder) RecordSession(ctx context.Context, summary domain.StudySession) (domain.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary.ID = r.newID()
	totals, err := r.users.Get(ctx)
	if err != nil {
		return domain.StudySession{}, err
	}
	if err := r.users.Put(ctx, Apply(totals, summary)); err != nil {
		return domain.StudySession{}, err
	}
	if err := r.sessions.Append(ctx, summary); err != nil {
		if rerr := r.users.Put(ctx, totals); rerr != nil {
			r.logger.Error("failed to restore user stats", "session_id", summary.ID, "error", rerr)
		}
		return domain.StudySession{}, err
	}

	r.logger.Debug("session recorded", "session_id", summary.ID, "deck_id", summary.DeckID)
	return summary, nil
}

// Totals returns the cumulative user statistics.
func (r *Recorder) Totals(ctx context.Context) (domain.UserStats, error) {
	return r.users.Get(ctx)
}

// Apply folds one session into the running totals.
func Apply(totals domain.UserStats, s domain.StudySession) domain.UserStats {
	totals.TotalStudySessions++
	totals.TotalCardsStudied += s.CardsStudied
	totals.TotalCorrectAnswers += s.CorrectAnswers
	totals.TotalIncorrectAnswers += s.IncorrectAnswers
	totals.AverageAccuracy = domain.Percent(
		totals.TotalCorrectAnswers,
		totals.TotalCorrectAnswers+totals.TotalIncorrectAnswers,
	)
	totals.StudyTime += s.Duration
	totals.LastStudySession = s.Date
	totals.StudySessions = append(totals.StudySessions, s.ID)
	return totals
}

// RecentSession is a session joined with its deck's name.
type RecentSession struct {
	domain.StudySession
	DeckName string `json:"deckName"`
}

// Recent returns up to n sessions, most recent first.
func (r *Recorder) Recent(ctx context.Context, decks DeckLister, n int) ([]RecentSession, error) {
	sessions, err := r.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	names, err := deckNames(ctx, decks)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
	if n >= 0 && len(sessions) > n {
		sessions = sessions[:n]
	}

	out := make([]RecentSession, 0, len(sessions))
	for _, s := range sessions {
		name, ok := names[s.DeckID]
		if !ok {
			name = UnknownDeck
		}
		out = append(out, RecentSession{StudySession: s, DeckName: name})
	}
	return out, nil
}

// Progress is how much of a deck has been completed across all sessions.
type Progress struct {
	DeckID     string `json:"deckId"`
	DeckName   string `json:"deckName"`
	TotalCards int    `json:"totalCards"`
	Studied    int    `json:"studied"`
	Percent    int    `json:"percent"`
}

// DeckProgress reports, per deck, the distinct cards ever completed.
func (r *Recorder) DeckProgress(ctx context.Context, decks DeckLister) ([]Progress, error) {
	all, err := decks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks for progress: %w", err)
	}
	sessions, err := r.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]map[string]struct{})
	for _, s := range sessions {
		set, ok := completed[s.DeckID]
		if !ok {
			set = make(map[string]struct{})
			completed[s.DeckID] = set
		}
		for _, id := range s.CompletedCards {
			set[id] = struct{}{}
		}
	}

	out := make([]Progress, 0, len(all))
	for _, d := range all {
		studied := len(completed[d.ID])
		out = append(out, Progress{
			DeckID:     d.ID,
			DeckName:   d.Name,
			TotalCards: len(d.Cards),
			Studied:    studied,
			Percent:    domain.Percent(studied, len(d.Cards)),
		})
	}
	return out, nil
}

func deckNames(ctx context.Context, decks DeckLister) (map[string]string, error) {
	all, err := decks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	names := make(map[string]string, len(all))
	for _, d := range all {
		names[d.ID] = d.Name
	}
	return names, nil
}
