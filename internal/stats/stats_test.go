package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/storage"
)

func newRecorder(kv storage.KV) *Recorder {
	r := NewRecorder(kv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	return r
}

func TestApply(t *testing.T) {
	at := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	totals := Apply(domain.UserStats{}, domain.StudySession{
		ID: "a", CardsStudied: 3, CorrectAnswers: 2, IncorrectAnswers: 1, Duration: 4, Date: at,
	})
	totals = Apply(totals, domain.StudySession{
		ID: "b", CardsStudied: 1, CorrectAnswers: 0, IncorrectAnswers: 1, Duration: 1, Date: at.Add(time.Hour),
	})

	assert.Equal(t, 2, totals.TotalStudySessions)
	assert.Equal(t, 4, totals.TotalCardsStudied)
	assert.Equal(t, 2, totals.TotalCorrectAnswers)
	assert.Equal(t, 2, totals.TotalIncorrectAnswers)
	assert.Equal(t, 50, totals.AverageAccuracy)
	assert.Equal(t, 5, totals.StudyTime)
	assert.Equal(t, at.Add(time.Hour), totals.LastStudySession)
	assert.Equal(t, []string{"a", "b"}, totals.StudySessions)
}

func TestRecordSession(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	r := newRecorder(kv)

	got, err := r.RecordSession(ctx, domain.StudySession{DeckID: "d1", CardsStudied: 3, CorrectAnswers: 2, IncorrectAnswers: 1})
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	got, err = r.RecordSession(ctx, domain.StudySession{DeckID: "d1", CardsStudied: 1, CorrectAnswers: 1})
	require.NoError(t, err)
	assert.Equal(t, "s2", got.ID)

	totals, err := r.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.TotalStudySessions)
	assert.Equal(t, 75, totals.AverageAccuracy)

	sessions, err := storage.NewSessions(kv).List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestRecentAndProgress(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	decks := storage.NewDecks(kv)
	require.NoError(t, decks.Save(ctx, &domain.Deck{ID: "d1", Name: "Go", Cards: []domain.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}}))
	require.NoError(t, decks.Save(ctx, &domain.Deck{ID: "empty", Name: "Empty"}))

	r := newRecorder(kv)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range []domain.StudySession{
		{DeckID: "d1", CompletedCards: []string{"a"}},
		{DeckID: "gone"},
		{DeckID: "d1", CompletedCards: []string{"a", "b"}},
	} {
		s.Date = base.Add(time.Duration(i) * time.Hour)
		_, err := r.RecordSession(ctx, s)
		require.NoError(t, err)
	}

	recent, err := r.Recent(ctx, decks, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "s3", recent[0].ID)
	assert.Equal(t, "Go", recent[0].DeckName)
	assert.Equal(t, UnknownDeck, recent[1].DeckName)

	progress, err := r.DeckProgress(ctx, decks)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, Progress{DeckID: "d1", DeckName: "Go", TotalCards: 3, Studied: 2, Percent: 67}, progress[0])
	assert.Equal(t, 0, progress[1].Percent)
}

// failingKV rejects writes to one key.
type failingKV struct {
	*storage.Memory
	key string
}

func (kv failingKV) Set(ctx context.Context, key string, value []byte) error {
	if key == kv.key {
		return errors.New("write refused")
	}
	return kv.Memory.Set(ctx, key, value)
}

func TestRecordSessionKeepsLogAndTotalsInStep(t *testing.T) {
	ctx := context.Background()
	for _, key := range []string{storage.SessionsKey, storage.UserStatsKey} {
		t.Run(key, func(t *testing.T) {
			kv := failingKV{Memory: storage.NewMemory(), key: key}
			r := newRecorder(kv)

			_, err := r.RecordSession(ctx, domain.StudySession{DeckID: "d1", CardsStudied: 1, CorrectAnswers: 1})
			require.Error(t, err)

			totals, err := r.Totals(ctx)
			require.NoError(t, err)
			assert.Zero(t, totals.TotalStudySessions)
			assert.Empty(t, totals.StudySessions)

			sessions, err := storage.NewSessions(kv).List(ctx)
			require.NoError(t, err)
			assert.Empty(t, sessions)
		})
	}
}
