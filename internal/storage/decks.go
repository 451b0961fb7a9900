package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Decks stores every deck as one JSON array under DecksKey.
// All writes go through mu, so Update is an atomic read-modify-write.
type Decks struct {
	kv KV
	mu sync.Mutex
}

// NewDecks returns a deck repository on top of kv.
func NewDecks(kv KV) *Decks {
	return &Decks{kv: kv}
}

// List returns all decks in stored order.
func (d *Decks) List(ctx context.Context) ([]domain.Deck, error) {
	var decks []domain.Deck
	if _, err := loadJSON(ctx, d.kv, DecksKey, &decks); err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// Get retrieves a deck by id, or an error wrapping ErrNotFound.
func (d *Decks) Get(ctx context.Context, id string) (*domain.Deck, error) {
	decks, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range decks {
		if decks[i].ID == id {
			return &decks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: deck %s", ErrNotFound, id)
}

// Save replaces the deck with the same id, or appends it when new.
func (d *Decks) Save(ctx context.Context, deck *domain.Deck) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	decks, err := d.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range decks {
		if decks[i].ID == deck.ID {
			decks[i] = *deck.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		decks = append(decks, *deck.Clone())
	}
	if err := storeJSON(ctx, d.kv, DecksKey, decks); err != nil {
		return fmt.Errorf("failed to save deck %s: %w", deck.ID, err)
	}
	return nil
}

// Update applies fn to the stored deck and writes it back while holding the
// write lock. It returns the updated deck, or an error wrapping ErrNotFound
// when the deck does not exist. Nothing is written if fn fails.
func (d *Decks) Update(ctx context.Context, id string, fn func(*domain.Deck) error) (*domain.Deck, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	decks, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(decks, func(deck domain.Deck) bool { return deck.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: deck %s", ErrNotFound, id)
	}
	if err := fn(&decks[i]); err != nil {
		return nil, err
	}
	if err := storeJSON(ctx, d.kv, DecksKey, decks); err != nil {
		return nil, fmt.Errorf("failed to update deck %s: %w", id, err)
	}
	return decks[i].Clone(), nil
}

// Delete removes the deck with the given id. Missing decks are ignored.
func (d *Decks) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	decks, err := d.List(ctx)
	if err != nil {
		return err
	}
	kept := decks[:0]
	for _, deck := range decks {
		if deck.ID != id {
			kept = append(kept, deck)
		}
	}
	if err := storeJSON(ctx, d.kv, DecksKey, kept); err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", id, err)
	}
	return nil
}
