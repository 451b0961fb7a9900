package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Sessions is an append-only log of study session summaries.
type Sessions struct {
	kv KV
	mu sync.Mutex
}

func NewSessions(kv KV) *Sessions {
	return &Sessions{kv: kv}
}

// Append adds a session to the end of the log.
func (s *Sessions) Append(ctx context.Context, session domain.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.List(ctx)
	if err != nil {
		return err
	}
	sessions = append(sessions, session)
	if err := storeJSON(ctx, s.kv, SessionsKey, sessions); err != nil {
		return fmt.Errorf("failed to append session %s: %w", session.ID, err)
	}
	return nil
}

// List returns all sessions in recording order.
func (s *Sessions) List(ctx context.Context) ([]domain.StudySession, error) {
	var sessions []domain.StudySession
	if _, err := loadJSON(ctx, s.kv, SessionsKey, &sessions); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// UserStats stores the cumulative statistics record.
type UserStats struct {
	kv KV
}

func NewUserStats(kv KV) *UserStats {
	return &UserStats{kv: kv}
}

// Get returns the stored statistics, or the zero value when none exist yet.
func (u *UserStats) Get(ctx context.Context) (domain.UserStats, error) {
	var stats domain.UserStats
	if _, err := loadJSON(ctx, u.kv, UserStatsKey, &stats); err != nil {
		return domain.UserStats{}, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// Put overwrites the statistics record.
func (u *UserStats) Put(ctx context.Context, stats domain.UserStats) error {
	if err := storeJSON(ctx, u.kv, UserStatsKey, stats); err != nil {
		return fmt.Errorf("failed to put user stats: %w", err)
	}
	return nil
}
