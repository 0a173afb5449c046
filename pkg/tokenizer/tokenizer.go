package tokenizer

import (
	"errors"
	"fmt"

	"github.com/spicery/swagcod/pkg/parselib"
	"github.com/tliron/commonlog"
)

// logger is resolved on each use, after the CLI has configured the backend.
func logger() commonlog.Logger {
	return commonlog.GetLogger("swagcod.tokenizer")
}

// Tokenizer represents the main tokenizer structure.
type Tokenizer struct {
	input   parselib.Cursor[rune]
	grammar *grammar
}

// NewTokenizer creates a new tokenizer instance with default rules.
func NewTokenizer(input string) *Tokenizer {
	return NewTokenizerWithRules(input, DefaultRules())
}

// NewTokenizerWithRules creates a new tokenizer instance with custom rules.
func NewTokenizerWithRules(input string, rules *TokenizerRules) *Tokenizer {
	return &Tokenizer{
		input:   parselib.NewRuneCursor(input),
		grammar: newGrammar(rules),
	}
}

// Tokenize processes the input and returns a slice of tokens.
// On error the tokens recognised before the failure are returned alongside it.
func (t *Tokenizer) Tokenize() ([]*Token, error) {
	var c collector
	cur := t.input
	pos := Position{Line: 1, Col: 1}

	for !cur.Empty() {
		res, err := t.grammar.item.Parse(pos, cur)
		if err != nil {
			err = positionedError(err, cur, pos, failureReason(err, cur))
			logger().Debugf("tokenisation stopped after %d tokens: %s", len(c.tokens), err)
			return c.tokens, err
		}
		c.add(res.Value)
		pos, cur = res.State, res.Rest
	}

	logger().Debugf("tokenised %d tokens", len(c.tokens))
	return c.tokens, nil
}

// Lex tokenizes the whole of input in a single run of the grammar.
func Lex(input string, rules *TokenizerRules) ([]*Token, error) {
	g := newGrammar(rules)
	in := parselib.NewRuneCursor(input)
	start := Position{Line: 1, Col: 1}

	items, err := parselib.RunAll(g.all, in, start)
	if err != nil {
		from, pos := g.failingItem(in, start)
		return nil, positionedError(err, from, pos, failureReason(err, from))
	}

	var c collector
	for _, it := range items {
		c.add(it)
	}
	return c.tokens, nil
}

// failingItem steps through in one item at a time and returns the cursor and position
// of the first item that fails to parse.
func (g *grammar) failingItem(in parselib.Cursor[rune], pos Position) (parselib.Cursor[rune], Position) {
	for !in.Empty() {
		res, err := g.item.Parse(pos, in)
		if err != nil {
			break
		}
		pos, in = res.State, res.Rest
	}
	return in, pos
}

// collector turns grammar items into tokens, recording line breaks seen in trivia.
type collector struct {
	tokens     []*Token
	sawNewline bool
}

func (c *collector) add(it item) {
	if it.token == nil {
		c.sawNewline = c.sawNewline || it.newline
		return
	}
	if c.sawNewline {
		lnBefore := true
		it.token.LnBefore = &lnBefore
		c.sawNewline = false
	}
	c.tokens = append(c.tokens, it.token)
}

// positionedError reports a parse failure with the line and column at which it
// occurred. from and pos are the cursor and position the failing parse started at.
func positionedError(err error, from parselib.Cursor[rune], pos Position, reason string) error {
	f, ok := parselib.AsFailure[rune](err)
	if !ok {
		return err
	}
	pos = pos.advance(from.Take(from.Len() - f.Remaining.Len()))
	return fmt.Errorf("tokenisation error at line %d, column %d: %s: %w",
		pos.Line, pos.Col, reason, err)
}

// failureReason describes err given the input at which the failing token started.
func failureReason(err error, from parselib.Cursor[rune]) string {
	if errors.Is(err, parselib.ErrCommitted) {
		switch {
		case from.HasPrefix([]rune("--[[")):
			return "unterminated block comment"
		case !from.Empty() && (from.Front() == '"' || from.Front() == '\''):
			return "unterminated string"
		}
		return "malformed token"
	}
	if errors.Is(err, parselib.ErrLeftoverInput) {
		return "unexpected input"
	}
	return "unrecognised input"
}
