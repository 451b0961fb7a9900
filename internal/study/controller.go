package study

import (
	"fmt"
	"time"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Phase is the controller's position in the session state machine.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseAwaitingReveal
	PhaseAwaitingOutcome
	PhaseComplete
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseAwaitingReveal:
		return "awaiting_reveal"
	case PhaseAwaitingOutcome:
		return "awaiting_outcome"
	case PhaseComplete:
		return "complete"
	case PhaseError:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Outcome tells how a completed session ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	}
	return "none"
}

// State is a read-only view of the session.
type State struct {
	Phase      Phase
	Outcome    Outcome
	DeckID     string
	DeckName   string
	Card       *domain.Card // nil unless a card is awaiting reveal or outcome
	ShowAnswer bool
	Index      int
	Remaining  int
	TotalCards int
	Lives      int
	Correct    int
	Incorrect  int
	Summary    *domain.StudySession // set once Complete
	Err        error                // set in PhaseError
}

// Effect is a side effect the caller must apply, in order, before exposing
// the accompanying state.
type Effect interface{ effect() }

// SaveDeck asks for the study annotations of the cards named in CardIDs to be
// copied from Deck onto the stored deck. Other fields and cards are left to
// whatever is stored.
type SaveDeck struct {
	Deck    *domain.Deck
	CardIDs []string
}

// RecordSession hands a finished session summary to the statistics sink.
type RecordSession struct{ Summary domain.StudySession }

func (SaveDeck) effect()      {}
func (RecordSession) effect() {}

// Result is the outcome of one command.
type Result struct {
	State   State
	Effects []Effect
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMaxLives overrides MaxLives.
func WithMaxLives(n int) Option {
	return func(c *Controller) { c.maxLives = n }
}

// Controller is the session state machine. It performs no I/O: persistence is
// requested through the Effects of each Result. It is not safe for concurrent use.
type Controller struct {
	now      func() time.Time
	maxLives int

	phase      Phase
	outcome    Outcome
	err        error
	deck       *domain.Deck
	pool       *Pool
	lives      Lives
	acc        *Accumulator
	index      int
	showAnswer bool
	summary    *domain.StudySession
	// unsaved reset: the cleared per-session outcomes of every card still
	// need writing with the next SaveDeck.
	resetPending bool
}

// NewController returns a controller in PhaseLoading.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		now:      time.Now,
		maxLives: MaxLives,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load starts the session from a deck snapshot. A nil deck means the deck
// was not found.
func (c *Controller) Load(deck *domain.Deck) (Result, error) {
	if c.phase != PhaseLoading {
		return c.reject("load")
	}
	if err := c.begin(deck); err != nil {
		return Result{State: c.State()}, err
	}
	return Result{State: c.State()}, nil
}

// Reveal shows the answer of the current card.
func (c *Controller) Reveal() (Result, error) {
	if c.phase != PhaseAwaitingReveal {
		return c.reject("reveal")
	}
	c.showAnswer = true
	c.phase = PhaseAwaitingOutcome
	return Result{State: c.State()}, nil
}

// Answer records whether the current card was answered correctly and
// advances the session.
func (c *Controller) Answer(correct bool) (Result, error) {
	if c.phase != PhaseAwaitingOutcome {
		return c.reject("answer")
	}

	card, ok := c.pool.Current(c.index)
	if !ok {
		return c.fault(fmt.Errorf("%w: index %d of %d", ErrCardIndexInconsistent, c.index, c.pool.Len()))
	}
	deckIdx := c.deck.CardIndex(card.ID)
	if deckIdx < 0 {
		return c.fault(fmt.Errorf("%w: card %s missing from deck", ErrCardIndexInconsistent, card.ID))
	}

	now := c.now()
	c.deck.Cards[deckIdx].RecordOutcome(correct, now)
	c.deck.UpdatedAt = now
	c.acc.Record(card.ID, correct)

	failed := false
	if correct {
		if err := c.pool.Remove(c.index); err != nil {
			return c.fault(err)
		}
	} else {
		c.lives = c.lives.Consume()
		if err := c.pool.Requeue(c.index); err != nil {
			return c.fault(err)
		}
		failed = c.lives.Depleted()
	}

	ids := []string{card.ID}
	if c.resetPending {
		ids = c.cardIDs()
		c.resetPending = false
	}
	effects := []Effect{SaveDeck{Deck: c.deck.Clone(), CardIDs: ids}}
	switch {
	case failed:
		c.complete(OutcomeFailure, now)
	case c.pool.Len() == 0:
		c.complete(OutcomeSuccess, now)
	default:
		if c.index >= c.pool.Len() {
			c.index = 0
		}
		c.showAnswer = false
		c.phase = PhaseAwaitingReveal
	}
	if c.phase == PhaseComplete {
		effects = append(effects, RecordSession{Summary: *c.summary})
	}
	return Result{State: c.State(), Effects: effects}, nil
}

// Restart begins a fresh session from the latest deck snapshot. Per-session
// outcomes on the cards are cleared; lifetime counters are kept.
func (c *Controller) Restart(deck *domain.Deck) (Result, error) {
	switch c.phase {
	case PhaseAwaitingReveal, PhaseAwaitingOutcome, PhaseComplete:
	default:
		return c.reject("restart")
	}
	if err := c.begin(deck); err != nil {
		return Result{State: c.State()}, err
	}
	c.resetPending = false
	return Result{State: c.State(), Effects: []Effect{SaveDeck{Deck: c.deck.Clone(), CardIDs: c.cardIDs()}}}, nil
}

// Fail moves the session to PhaseError, e.g. when an effect could not be applied.
func (c *Controller) Fail(err error) State {
	c.phase = PhaseError
	c.err = err
	return c.State()
}

// State returns the current view of the session.
func (c *Controller) State() State {
	s := State{
		Phase:      c.phase,
		Outcome:    c.outcome,
		ShowAnswer: c.showAnswer,
		Index:      c.index,
		Lives:      int(c.lives),
		Err:        c.err,
	}
	if c.deck != nil {
		s.DeckID = c.deck.ID
		s.DeckName = c.deck.Name
		s.TotalCards = len(c.deck.Cards)
	}
	if c.pool != nil {
		s.Remaining = c.pool.Len()
	}
	if c.acc != nil {
		s.Correct = c.acc.Correct()
		s.Incorrect = c.acc.Incorrect()
	}
	if c.phase == PhaseAwaitingReveal || c.phase == PhaseAwaitingOutcome {
		if card, ok := c.pool.Current(c.index); ok {
			if i := c.deck.CardIndex(card.ID); i >= 0 {
				card = c.deck.Cards[i]
			}
			s.Card = &card
		}
	}
	if c.summary != nil {
		summary := *c.summary
		s.Summary = &summary
	}
	return s
}

func (c *Controller) begin(deck *domain.Deck) error {
	c.pool, c.acc, c.summary = nil, nil, nil
	if deck == nil {
		c.Fail(ErrDeckNotFound)
		return ErrDeckNotFound
	}
	if len(deck.Cards) == 0 {
		c.deck = deck.Clone()
		c.Fail(ErrEmptyDeck)
		return ErrEmptyDeck
	}

	c.deck = deck.Clone()
	for i := range c.deck.Cards {
		c.deck.Cards[i].ResetSession()
	}
	c.pool = NewPool(c.deck.Cards)
	c.lives = NewLives(c.maxLives)
	c.acc = NewAccumulator(c.now())
	c.index = 0
	c.showAnswer = false
	c.outcome = OutcomeNone
	c.err = nil
	c.phase = PhaseAwaitingReveal
	c.resetPending = true
	return nil
}

func (c *Controller) cardIDs() []string {
	ids := make([]string, len(c.deck.Cards))
	for i, card := range c.deck.Cards {
		ids[i] = card.ID
	}
	return ids
}

func (c *Controller) complete(outcome Outcome, now time.Time) {
	c.phase = PhaseComplete
	c.outcome = outcome
	c.showAnswer = false
	c.summary = &domain.StudySession{
		DeckID:           c.deck.ID,
		Date:             now,
		CardsStudied:     c.acc.Correct() + c.acc.Incorrect(),
		CorrectAnswers:   c.acc.Correct(),
		IncorrectAnswers: c.acc.Incorrect(),
		Accuracy:         c.acc.Accuracy(),
		CompletedCards:   c.acc.Completed(),
		Duration:         c.acc.ElapsedMinutes(now),
		Failed:           outcome == OutcomeFailure,
	}
}

// recorded replaces the summary with the sink's copy, which carries the id.
func (c *Controller) recorded(summary domain.StudySession) {
	if c.summary != nil {
		c.summary = &summary
	}
}

func (c *Controller) reject(command string) (Result, error) {
	return Result{State: c.State()}, fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, command, c.phase)
}

func (c *Controller) fault(err error) (Result, error) {
	return Result{State: c.Fail(err)}, err
}
