package study

import (
	"fmt"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Pool is the ordered set of cards not yet answered correctly in this session.
type Pool struct {
	cards []domain.Card
}

// NewPool copies cards, preserving their order.
func NewPool(cards []domain.Card) *Pool {
	p := &Pool{cards: make([]domain.Card, len(cards))}
	copy(p.cards, cards)
	return p
}

// Len returns the number of cards left.
func (p *Pool) Len() int { return len(p.cards) }

// Current returns the card at index. ok is false when index is out of range,
// which callers treat as "no current card" rather than a failure.
func (p *Pool) Current(index int) (card domain.Card, ok bool) {
	if index < 0 || index >= len(p.cards) {
		return domain.Card{}, false
	}
	return p.cards[index], true
}

// Remove drops the card at index. Used after a correct answer.
func (p *Pool) Remove(index int) error {
	if index < 0 || index >= len(p.cards) {
		return fmt.Errorf("%w: remove at %d of %d", ErrCardIndexInconsistent, index, len(p.cards))
	}
	p.cards = append(p.cards[:index], p.cards[index+1:]...)
	return nil
}

// Requeue moves the card at index to the end of the pool. When it is the
// only card left it is dropped instead, leaving the pool empty.
func (p *Pool) Requeue(index int) error {
	if index < 0 || index >= len(p.cards) {
		return fmt.Errorf("%w: requeue at %d of %d", ErrCardIndexInconsistent, index, len(p.cards))
	}
	card := p.cards[index]
	p.cards = append(p.cards[:index], p.cards[index+1:]...)
	if len(p.cards) > 0 {
		p.cards = append(p.cards, card)
	}
	return nil
}

// IDs returns the card ids in pool order.
func (p *Pool) IDs() []string {
	ids := make([]string, len(p.cards))
	for i, c := range p.cards {
		ids[i] = c.ID
	}
	return ids
}
