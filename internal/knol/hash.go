// Package knol derives stable identifiers from card content, so re-importing
// an unchanged card keeps its study history.
package knol

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/conorfennell/flashdeck/internal/domain"
)

const idLength = 12

// Normalize joins the card's question, answer and context after lowercasing
// each part and collapsing whitespace, one field per line.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		return strings.Join(strings.Fields(strings.ToLower(part)), " ")
	}
	return strings.Join([]string{
		normalizePart(card.Question),
		normalizePart(card.Answer),
		normalizePart(card.Context),
	}, "\n")
}

// Hash returns the hex SHA-256 of the normalized card.
func Hash(card domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return hex.EncodeToString(sum[:])
}

// CardID is the short content-derived id used for imported cards.
func CardID(card domain.Card) string {
	return "k-" + Hash(card)[:idLength]
}

// DeckID derives a deck id from a source file path relative to its import root.
func DeckID(relPath string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(filepath.Clean(relPath))))
	return "md-" + hex.EncodeToString(sum[:])[:idLength]
}
