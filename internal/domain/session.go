package domain

import (
	"math"
	"time"
)

// StudySession is the immutable summary of one finished study session.
// ID is assigned by the session sink when the summary is recorded.
type StudySession struct {
	ID               string    `json:"id"`
	DeckID           string    `json:"deckId"`
	Date             time.Time `json:"date"`
	CardsStudied     int       `json:"cardsStudied"`
	CorrectAnswers   int       `json:"correctAnswers"`
	IncorrectAnswers int       `json:"incorrectAnswers"`
	Accuracy         int       `json:"accuracy"`
	CompletedCards   []string  `json:"completedCards"`
	Duration         int       `json:"duration"` // minutes
	Failed           bool      `json:"failed"`
}

// UserStats holds cumulative totals across all recorded sessions.
type UserStats struct {
	TotalStudySessions    int       `json:"totalStudySessions"`
	TotalCardsStudied     int       `json:"totalCardsStudied"`
	TotalCorrectAnswers   int       `json:"totalCorrectAnswers"`
	TotalIncorrectAnswers int       `json:"totalIncorrectAnswers"`
	AverageAccuracy       int       `json:"averageAccuracy"`
	StudyTime             int       `json:"studyTime"` // minutes
	LastStudySession      time.Time `json:"lastStudySession"`
	StudySessions         []string  `json:"studySessions"`
}

// Percent returns round(part/whole*100), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
