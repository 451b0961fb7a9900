// Package study runs a single study session over a deck: cards are quizzed in
// order, missed cards are requeued, and a finite lives budget ends the session
// early on too many misses.
package study

import "errors"

var (
	// ErrDeckNotFound is returned when the requested deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrEmptyDeck is returned when the deck has no cards to study.
	ErrEmptyDeck = errors.New("no cards")

	// ErrCardIndexInconsistent signals that the current index fell outside the
	// pool. It is an internal fault and ends the session.
	ErrCardIndexInconsistent = errors.New("card index inconsistent with study pool")

	// ErrInvalidTransition is returned for a command the current phase does not accept.
	ErrInvalidTransition = errors.New("invalid transition")
)
