package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorRecord(t *testing.T) {
	acc := NewAccumulator(time.Now())

	acc.Record("a", false)
	acc.Record("a", true)
	acc.Record("b", true)
	acc.Record("a", true)

	assert.Equal(t, 3, acc.Correct())
	assert.Equal(t, 1, acc.Incorrect())
	assert.Equal(t, []string{"a", "b"}, acc.Completed(), "completed ids are a set")
	assert.Equal(t, 75, acc.Accuracy())
}

func TestAccumulatorAccuracyWithoutAnswers(t *testing.T) {
	assert.Equal(t, 0, NewAccumulator(time.Now()).Accuracy())
}

func TestAccumulatorElapsedMinutes(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	acc := NewAccumulator(start)

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{89 * time.Second, 1},
		{90 * time.Second, 2},
		{12 * time.Minute, 12},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, acc.ElapsedMinutes(start.Add(tc.elapsed)), "elapsed %s", tc.elapsed)
	}
}
