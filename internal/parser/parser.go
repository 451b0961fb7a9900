package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/flashdeck/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	titlePrefix    = "# "
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingContext
)

// Document is one markdown deck file.
type Document struct {
	Title string // first "# " heading before any card, if present
	Cards []domain.Card
	// Incomplete lists the questions of cards dropped for having no answer.
	Incomplete []string
}

// ParseFile reads a deck file from the given path.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads Q:/A:/C: blocks from r. A card needs a question and an answer;
// both and the context may span several lines. "---" or a new Q: ends the current card.
func Parse(r io.Reader) (*Document, error) {
	p := &docParser{doc: &Document{}}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	p.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type docParser struct {
	doc   *Document
	card  domain.Card
	block []string
	state state
	seen  bool // a card has started
}

func (p *docParser) line(line string) {
	switch {
	case line == separator:
		p.finishCard()
	case strings.HasPrefix(line, questionPrefix):
		if p.state != seeking {
			p.finishCard()
		}
		p.start(readingQuestion, line[len(questionPrefix):])
	case strings.HasPrefix(line, answerPrefix) && p.state != seeking:
		p.start(readingAnswer, line[len(answerPrefix):])
	case strings.HasPrefix(line, contextPrefix) && p.state != seeking:
		p.start(readingContext, line[len(contextPrefix):])
	case p.state != seeking:
		p.block = append(p.block, line)
	case !p.seen && p.doc.Title == "" && strings.HasPrefix(line, titlePrefix):
		p.doc.Title = strings.TrimSpace(line[len(titlePrefix):])
	}
}

func (p *docParser) start(next state, rest string) {
	p.flushBlock()
	p.state = next
	p.seen = true
	p.block = append(p.block, strings.TrimPrefix(rest, " "))
}

func (p *docParser) flushBlock() {
	if len(p.block) == 0 {
		return
	}
	content := strings.TrimSpace(strings.Join(p.block, "\n"))
	switch p.state {
	case readingQuestion:
		p.card.Question = content
	case readingAnswer:
		p.card.Answer = content
	case readingContext:
		p.card.Context = content
	}
	p.block = nil
}

func (p *docParser) finishCard() {
	p.flushBlock()
	switch {
	case p.card.Question == "":
	case p.card.Answer == "":
		p.doc.Incomplete = append(p.doc.Incomplete, p.card.Question)
	default:
		p.doc.Cards = append(p.doc.Cards, p.card)
	}
	p.card = domain.Card{}
	p.state = seeking
}
