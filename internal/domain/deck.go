package domain

import "time"

// Deck is a named, ordered collection of cards.
type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Cards       []Card    `json:"cards"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a copy of the deck that shares no card storage with d.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	out := *d
	out.Cards = make([]Card, len(d.Cards))
	copy(out.Cards, d.Cards)
	return &out
}

// CardIndex returns the position of the card with the given id, or -1.
func (d *Deck) CardIndex(id string) int {
	for i := range d.Cards {
		if d.Cards[i].ID == id {
			return i
		}
	}
	return -1
}
