package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// SeedDemo writes the demo decks on the first visit and marks the visit.
// It reports whether seeding happened.
func SeedDemo(ctx context.Context, kv KV, now time.Time) (bool, error) {
	_, err := kv.Get(ctx, FirstVisitKey)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("failed to check first visit: %w", err)
	}

	if err := storeJSON(ctx, kv, DecksKey, demoDecks(now)); err != nil {
		return false, fmt.Errorf("failed to seed demo decks: %w", err)
	}
	if err := kv.Set(ctx, FirstVisitKey, []byte("false")); err != nil {
		return false, fmt.Errorf("failed to mark first visit: %w", err)
	}
	return true, nil
}

func demoDecks(now time.Time) []domain.Deck {
	return []domain.Deck{
		{
			ID:          "demo-1",
			Name:        "JavaScript Basics",
			Description: "Basic concepts in JavaScript programming language",
			Category:    "Programming",
			Cards: []domain.Card{
				{ID: "js-1", Question: "What is JavaScript?", Answer: "JavaScript is a programming language that enables interactive web pages and is an essential part of web applications."},
				{ID: "js-2", Question: "What is a closure in JavaScript?", Answer: "A closure is a function that has access to its own scope, the outer function scope, and the global scope."},
				{ID: "js-3", Question: "What is the difference between let and var?", Answer: "let is block-scoped, while var is function-scoped. let was introduced in ES6."},
				{ID: "js-4", Question: "What is a Promise?", Answer: "A Promise is an object representing the eventual completion or failure of an asynchronous operation."},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "demo-2",
			Name:        "React Fundamentals",
			Description: "Essential React concepts and hooks",
			Category:    "Programming",
			Cards: []domain.Card{
				{ID: "react-1", Question: "What is JSX?", Answer: "JSX is a syntax extension for JavaScript that looks similar to HTML and is used with React to describe what the UI should look like."},
				{ID: "react-2", Question: "What are React Hooks?", Answer: "Hooks are functions that let you \"hook into\" React state and lifecycle features from function components."},
				{ID: "react-3", Question: "What is the useState hook?", Answer: "useState is a Hook that lets you add React state to function components."},
				{ID: "react-4", Question: "What is the useEffect hook?", Answer: "useEffect is a hook that lets you perform side effects in function components, similar to componentDidMount and componentDidUpdate."},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
