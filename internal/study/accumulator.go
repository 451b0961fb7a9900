package study

import (
	"math"
	"sort"
	"time"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Accumulator keeps the running tallies of a session.
type Accumulator struct {
	correct   int
	incorrect int
	completed map[string]struct{}
	start     time.Time
}

// NewAccumulator starts an empty tally at start.
func NewAccumulator(start time.Time) *Accumulator {
	return &Accumulator{
		completed: make(map[string]struct{}),
		start:     start,
	}
}

// Record counts one answer. Correct answers add cardID to the completed set;
// repeats are no-ops there.
func (a *Accumulator) Record(cardID string, correct bool) {
	if correct {
		a.correct++
		a.completed[cardID] = struct{}{}
		return
	}
	a.incorrect++
}

// Correct is the number of correct answers recorded.
func (a *Accumulator) Correct() int { return a.correct }

// Incorrect is the number of incorrect answers recorded.
func (a *Accumulator) Incorrect() int { return a.incorrect }

// Accuracy is the rounded percentage of correct answers, 0 with no answers.
func (a *Accumulator) Accuracy() int {
	return domain.Percent(a.correct, a.correct+a.incorrect)
}

// ElapsedMinutes is the time since start rounded to whole minutes.
func (a *Accumulator) ElapsedMinutes(now time.Time) int {
	return int(math.Round(now.Sub(a.start).Minutes()))
}

// Completed returns the distinct completed card ids, sorted.
func (a *Accumulator) Completed() []string {
	ids := make([]string, 0, len(a.completed))
	for id := range a.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
