// Package deck manages decks and their cards and provides category listing.
package deck

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/storage"
)

// ErrValidation is returned when deck or card input is invalid.
var ErrValidation = errors.New("validation failed")

// Store persists decks.
type Store interface {
	List(ctx context.Context) ([]domain.Deck, error)
	Get(ctx context.Context, id string) (*domain.Deck, error)
	Save(ctx context.Context, deck *domain.Deck) error
	Update(ctx context.Context, id string, fn func(*domain.Deck) error) (*domain.Deck, error)
	Delete(ctx context.Context, id string) error
}

// DeckInput holds the editable fields of a deck.
type DeckInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
}

// CardInput holds the editable fields of a card.
type CardInput struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Service implements deck and card CRUD on top of a Store.
type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewService returns a Service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create adds a new, empty deck.
func (s *Service) Create(ctx context.Context, in DeckInput) (*domain.Deck, error) {
	in = in.trimmed()
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	d := &domain.Deck{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Cards:       []domain.Card{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return d, nil
}

// Update changes a deck's name, description and category.
func (s *Service) Update(ctx context.Context, id string, in DeckInput) (*domain.Deck, error) {
	in = in.trimmed()
	if err := s.check(in); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(d *domain.Deck) error {
		d.Name = in.Name
		d.Description = in.Description
		d.Category = in.Category
		return nil
	})
}

// Delete removes a deck.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// AddCard appends a card to a deck.
func (s *Service) AddCard(ctx context.Context, deckID string, in CardInput) (*domain.Card, error) {
	in = in.trimmed()
	if err := s.check(in); err != nil {
		return nil, err
	}
	card := domain.Card{ID: s.newID(), Question: in.Question, Answer: in.Answer}
	if _, err := s.modify(ctx, deckID, func(d *domain.Deck) error {
		d.Cards = append(d.Cards, card)
		return nil
	}); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard edits a card's question and answer. Study annotations are kept.
func (s *Service) UpdateCard(ctx context.Context, deckID, cardID string, in CardInput) error {
	in = in.trimmed()
	if err := s.check(in); err != nil {
		return err
	}
	_, err := s.modify(ctx, deckID, func(d *domain.Deck) error {
		i := d.CardIndex(cardID)
		if i < 0 {
			return fmt.Errorf("%w: card %s", storage.ErrNotFound, cardID)
		}
		d.Cards[i].Question = in.Question
		d.Cards[i].Answer = in.Answer
		return nil
	})
	return err
}

// RemoveCard deletes a card from a deck.
func (s *Service) RemoveCard(ctx context.Context, deckID, cardID string) error {
	_, err := s.modify(ctx, deckID, func(d *domain.Deck) error {
		i := d.CardIndex(cardID)
		if i < 0 {
			return fmt.Errorf("%w: card %s", storage.ErrNotFound, cardID)
		}
		d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
		return nil
	})
	return err
}

// Get returns a single deck.
func (s *Service) Get(ctx context.Context, id string) (*domain.Deck, error) {
	return s.store.Get(ctx, id)
}

// List returns all decks, or only those in category when it is not empty.
func (s *Service) List(ctx context.Context, category string) ([]domain.Deck, error) {
	decks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		if decks == nil {
			decks = []domain.Deck{}
		}
		return decks, nil
	}
	out := []domain.Deck{}
	for _, d := range decks {
		if strings.EqualFold(d.Category, category) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Categories returns the distinct non-empty categories, sorted. Categories
// differing only in case are reported once, with the first spelling seen.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	decks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, d := range decks {
		if d.Category == "" {
			continue
		}
		key := strings.ToLower(d.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d.Category)
	}
	sort.Strings(out)
	return out, nil
}

// modify runs fn inside the store's atomic update and stamps UpdatedAt.
func (s *Service) modify(ctx context.Context, id string, fn func(*domain.Deck) error) (*domain.Deck, error) {
	return s.store.Update(ctx, id, func(d *domain.Deck) error {
		if err := fn(d); err != nil {
			return err
		}
		d.UpdatedAt = s.now()
		return nil
	})
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is %s", ErrValidation, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (in DeckInput) trimmed() DeckInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

func (in CardInput) trimmed() CardInput {
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	return in
}
