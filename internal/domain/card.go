package domain

import "time"

// Card represents a single question-answer entry of a deck.
// The optional fields are annotations written while studying.
type Card struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  string `json:"context,omitempty"`

	LastStudied    Optional[time.Time] `json:"lastStudied,omitzero"`
	IsCorrect      Optional[bool]      `json:"isCorrect,omitzero"`
	TimesCorrect   Optional[int]       `json:"timesCorrect,omitzero"`
	TimesIncorrect Optional[int]       `json:"timesIncorrect,omitzero"`
}

// RecordOutcome annotates the card with the result of one answer.
// Lifetime counters only ever grow.
func (c *Card) RecordOutcome(correct bool, at time.Time) {
	c.IsCorrect = Some(correct)
	c.LastStudied = Some(at)
	if correct {
		c.TimesCorrect = Some(c.TimesCorrect.ValueOr(0) + 1)
	} else {
		c.TimesIncorrect = Some(c.TimesIncorrect.ValueOr(0) + 1)
	}
}

// ResetSession clears the per-session outcome. Lifetime counters and the
// last studied timestamp are preserved.
func (c *Card) ResetSession() {
	c.IsCorrect = None[bool]()
}
