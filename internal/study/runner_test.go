package study

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/storage"
)

type fakeSink struct {
	recorded []domain.StudySession
	err      error
}

func (f *fakeSink) RecordSession(_ context.Context, s domain.StudySession) (domain.StudySession, error) {
	if f.err != nil {
		return domain.StudySession{}, f.err
	}
	s.ID = "session-1"
	f.recorded = append(f.recorded, s)
	return s, nil
}

type failingSaver struct{}

func (failingSaver) Update(context.Context, string, func(*domain.Deck) error) (*domain.Deck, error) {
	return nil, errors.New("disk full")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededDecks(t *testing.T, deck *domain.Deck) *storage.Decks {
	t.Helper()
	decks := storage.NewDecks(storage.NewMemory())
	require.NoError(t, decks.Save(context.Background(), deck))
	return decks
}

func TestRunnerCompletesSession(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1", "c2"))
	sink := &fakeSink{}
	r := NewRunner(decks, decks, sink, discardLogger())

	state, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Deck", state.DeckName)

	for _, correct := range []bool{false, true, true} {
		_, err = r.Reveal(ctx)
		require.NoError(t, err)
		state, err = r.Answer(ctx, correct)
		require.NoError(t, err)
	}

	require.Equal(t, PhaseComplete, state.Phase)
	require.Len(t, sink.recorded, 1)
	require.NotNil(t, state.Summary)
	assert.Equal(t, "session-1", state.Summary.ID)
	assert.Equal(t, 67, state.Summary.Accuracy)

	stored, err := decks.Get(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Cards[0].TimesIncorrect.ValueOr(0))
	assert.Equal(t, 1, stored.Cards[0].TimesCorrect.ValueOr(0))
	assert.Equal(t, 1, stored.Cards[1].TimesCorrect.ValueOr(0))
}

func TestRunnerUnknownDeck(t *testing.T) {
	decks := storage.NewDecks(storage.NewMemory())
	sink := &fakeSink{}
	r := NewRunner(decks, decks, sink, discardLogger())

	state, err := r.Start(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrDeckNotFound)
	assert.Equal(t, PhaseError, state.Phase)
	assert.Empty(t, sink.recorded)
}

func TestRunnerAbandonedSessionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1", "c2"))
	sink := &fakeSink{}
	r := NewRunner(decks, decks, sink, discardLogger())

	_, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)
	_, err = r.Reveal(ctx)
	require.NoError(t, err)
	_, err = r.Answer(ctx, true)
	require.NoError(t, err)

	assert.Empty(t, sink.recorded)
	stored, err := decks.Get(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Cards[0].TimesCorrect.ValueOr(0), "per-answer annotations are persisted")
}

func TestRunnerSaveFailureHidesCompletion(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1"))
	sink := &fakeSink{}
	r := NewRunner(decks, failingSaver{}, sink, discardLogger())

	_, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)
	_, err = r.Reveal(ctx)
	require.NoError(t, err)
	state, err := r.Answer(ctx, true)

	require.Error(t, err)
	assert.Equal(t, PhaseError, state.Phase)
	assert.Empty(t, sink.recorded, "no summary without the deck write")

	_, err = r.Restart(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRunnerSinkFailure(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1"))
	r := NewRunner(decks, decks, &fakeSink{err: errors.New("boom")}, discardLogger())

	_, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)
	_, err = r.Reveal(ctx)
	require.NoError(t, err)
	state, err := r.Answer(ctx, true)

	require.Error(t, err)
	assert.Equal(t, PhaseError, state.Phase)
}

func TestRunnerRestartRereadsDeck(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1", "c2"))
	r := NewRunner(decks, decks, &fakeSink{}, discardLogger())

	_, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)

	grown := testDeck("c1", "c2", "c3")
	require.NoError(t, decks.Save(ctx, grown))

	state, err := r.Restart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Remaining)

	require.NoError(t, decks.Save(ctx, testDeck()))
	state, err = r.Restart(ctx)
	assert.ErrorIs(t, err, ErrEmptyDeck)
	assert.Equal(t, PhaseError, state.Phase)
}

func TestRunnerMergesIntoEditedDeck(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1", "c2"))
	r := NewRunner(decks, decks, &fakeSink{}, discardLogger())

	_, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)

	edited, err := decks.Get(ctx, "deck-1")
	require.NoError(t, err)
	edited.Name = "Renamed"
	edited.Cards[1].Question = "edited"
	edited.Cards = append(edited.Cards, domain.Card{ID: "c3", Question: "new", Answer: "card"})
	require.NoError(t, decks.Save(ctx, edited))

	_, err = r.Reveal(ctx)
	require.NoError(t, err)
	_, err = r.Answer(ctx, true)
	require.NoError(t, err)

	stored, err := decks.Get(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	require.Len(t, stored.Cards, 3)
	assert.Equal(t, domain.Some(1), stored.Cards[0].TimesCorrect)
	assert.Equal(t, "edited", stored.Cards[1].Question)
	assert.Equal(t, "c3", stored.Cards[2].ID)
}

func TestRunnerDeletedDeckFailsSession(t *testing.T) {
	ctx := context.Background()
	decks := seededDecks(t, testDeck("c1", "c2"))
	sink := &fakeSink{}
	r := NewRunner(decks, decks, sink, discardLogger())

	_, err := r.Start(ctx, "deck-1")
	require.NoError(t, err)
	_, err = r.Reveal(ctx)
	require.NoError(t, err)
	require.NoError(t, decks.Delete(ctx, "deck-1"))

	state, err := r.Answer(ctx, true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, PhaseError, state.Phase)

	_, err = decks.Get(ctx, "deck-1")
	assert.ErrorIs(t, err, storage.ErrNotFound, "deleted deck stays deleted")
	assert.Empty(t, sink.recorded)
}
