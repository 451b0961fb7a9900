package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/storage"
)

func newService() *Service {
	return NewService(storage.NewDecks(storage.NewMemory()))
}

func TestCreateValidatesName(t *testing.T) {
	s := newService()

	_, err := s.Create(context.Background(), DeckInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	d, err := s.Create(context.Background(), DeckInput{Name: "  Go  ", Category: "Programming"})
	require.NoError(t, err)
	assert.Equal(t, "Go", d.Name)
	assert.NotEmpty(t, d.ID)
	assert.Empty(t, d.Cards)
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)
}

func TestCardLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newService()
	d, err := s.Create(ctx, DeckInput{Name: "Go"})
	require.NoError(t, err)

	_, err = s.AddCard(ctx, d.ID, CardInput{Question: "What is Go?"})
	assert.ErrorIs(t, err, ErrValidation)

	card, err := s.AddCard(ctx, d.ID, CardInput{Question: "What is Go?", Answer: "A language"})
	require.NoError(t, err)

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Cards, 1)
	got.Cards[0].TimesCorrect = domain.Some(2)
	require.NoError(t, s.store.Save(ctx, got))

	require.NoError(t, s.UpdateCard(ctx, d.ID, card.ID, CardInput{Question: "What is Go, really?", Answer: "A language"}))
	got, err = s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "What is Go, really?", got.Cards[0].Question)
	assert.Equal(t, 2, got.Cards[0].TimesCorrect.ValueOr(0), "study annotations survive edits")

	assert.ErrorIs(t, s.UpdateCard(ctx, d.ID, "missing", CardInput{Question: "q", Answer: "a"}), storage.ErrNotFound)

	require.NoError(t, s.RemoveCard(ctx, d.ID, card.ID))
	got, err = s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Cards)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newService()
	d, err := s.Create(ctx, DeckInput{Name: "Old"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, d.ID, DeckInput{Name: "New", Description: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "desc", updated.Description)

	require.NoError(t, s.Delete(ctx, d.ID))
	assert.ErrorIs(t, s.Delete(ctx, d.ID), storage.ErrNotFound)
}

func TestListByCategory(t *testing.T) {
	ctx := context.Background()
	s := newService()
	for _, in := range []DeckInput{
		{Name: "Go", Category: "Programming"},
		{Name: "French", Category: "Languages"},
		{Name: "Rust", Category: "programming"},
		{Name: "Misc"},
	} {
		_, err := s.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	prog, err := s.List(ctx, "Programming")
	require.NoError(t, err)
	assert.Len(t, prog, 2)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Languages", "Programming"}, cats)
}

// slowKV widens the window between reading and writing the deck list.
type slowKV struct{ *storage.Memory }

func (kv slowKV) Get(ctx context.Context, key string) ([]byte, error) {
	time.Sleep(2 * time.Millisecond)
	return kv.Memory.Get(ctx, key)
}

func TestConcurrentAddCardKeepsEveryCard(t *testing.T) {
	ctx := context.Background()
	s := NewService(storage.NewDecks(slowKV{storage.NewMemory()}))
	d, err := s.Create(ctx, DeckInput{Name: "Go"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddCard(ctx, d.ID, CardInput{Question: fmt.Sprintf("q%d", i), Answer: "a"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.Cards, 10)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	ctx := context.Background()
	s := newService()

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	all, err := s.List(ctx, "")
	require.NoError(t, err)

	_, err = s.Create(ctx, DeckInput{Name: "Go", Category: "Programming"})
	require.NoError(t, err)
	none, err := s.List(ctx, "Cooking")
	require.NoError(t, err)

	for name, v := range map[string]any{"categories": cats, "all": all, "filtered": none} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(b), name)
	}
}
