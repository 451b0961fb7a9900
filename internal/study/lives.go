package study

// MaxLives is the default number of misses allowed per session.
const MaxLives = 5

// Lives counts down on every incorrect answer. Zero ends the session.
type Lives int

// NewLives returns a full budget of max lives.
func NewLives(max int) Lives {
	if max < 0 {
		max = 0
	}
	return Lives(max)
}

// Consume removes one life, never going below zero.
func (l Lives) Consume() Lives {
	if l <= 0 {
		return 0
	}
	return l - 1
}

// Depleted reports whether no lives remain.
func (l Lives) Depleted() bool { return l <= 0 }
