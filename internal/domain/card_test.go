package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRecordOutcome(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var c Card

	c.RecordOutcome(false, at)
	c.RecordOutcome(true, at.Add(time.Minute))

	assert.Equal(t, 1, c.TimesCorrect.ValueOr(0))
	assert.Equal(t, 1, c.TimesIncorrect.ValueOr(0))
	correct, ok := c.IsCorrect.Get()
	require.True(t, ok)
	assert.True(t, correct)
	assert.Equal(t, at.Add(time.Minute), c.LastStudied.ValueOr(time.Time{}))
}

func TestCardResetSessionKeepsCounters(t *testing.T) {
	c := Card{ID: "c1"}
	c.RecordOutcome(true, time.Now())

	c.ResetSession()

	assert.False(t, c.IsCorrect.IsSet())
	assert.Equal(t, 1, c.TimesCorrect.ValueOr(0))
	assert.True(t, c.LastStudied.IsSet())
}

func TestCardJSONOmitsAbsentAnnotations(t *testing.T) {
	data, err := json.Marshal(Card{ID: "js-1", Question: "Q", Answer: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"js-1","question":"Q","answer":"A"}`, string(data))

	var decoded Card
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","isCorrect":null,"timesCorrect":3}`), &decoded))
	assert.False(t, decoded.IsCorrect.IsSet())
	assert.Equal(t, 3, decoded.TimesCorrect.ValueOr(0))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{1, 1, 100},
		{2, 3, 67},
		{1, 3, 33},
		{0, 1, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Percent(tc.part, tc.whole), "Percent(%d, %d)", tc.part, tc.whole)
	}
}

func TestDeckCloneIsIndependent(t *testing.T) {
	d := &Deck{ID: "d", Cards: []Card{{ID: "a"}, {ID: "b"}}}
	c := d.Clone()
	c.Cards[0].Question = "changed"

	assert.Empty(t, d.Cards[0].Question)
	assert.Equal(t, 1, c.CardIndex("b"))
	assert.Equal(t, -1, c.CardIndex("zz"))
}
