package tokenizer

import (
	"encoding/json"
)

// TokenType represents the different types of tokens.
type TokenType string

const (
	// Literal constants
	NumericLiteral TokenType = "n" // Integer literals
	StringLiteral  TokenType = "s" // String literals with quotes and escapes

	// Identifier tokens
	KeywordToken  TokenType = "K" // Reserved words (local, function, end)
	VariableToken TokenType = "V" // Variable identifiers

	// Other tokens
	OperatorToken     TokenType = "O" // Operators and punctuation
	OpenDelimiter     TokenType = "[" // Opening brackets/braces/parentheses
	CloseDelimiter    TokenType = "]" // Closing brackets/braces/parentheses
	UnclassifiedToken TokenType = "U" // Unclassified tokens
)

// Position represents a line and column position in the source file.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// advance returns the position after reading rs. A line ends at "\n", "\r" or "\r\n".
func (p Position) advance(rs []rune) Position {
	for i, r := range rs {
		switch {
		case r == '\n' && i > 0 && rs[i-1] == '\r':
		case r == '\n' || r == '\r':
			p = Position{Line: p.Line + 1, Col: 1}
		default:
			p = Position{Line: p.Line, Col: p.Col + 1}
		}
	}
	return p
}

// Span represents the start and end positions of a token.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// MarshalJSON implements custom JSON marshaling for Span.
func (s Span) MarshalJSON() ([]byte, error) {
	arr := [4]int{s.Start.Line, s.Start.Col, s.End.Line, s.End.Col}
	return json.Marshal(arr)
}

// UnmarshalJSON implements custom JSON unmarshaling for Span.
func (s *Span) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	s.Start = Position{Line: arr[0], Col: arr[1]}
	s.End = Position{Line: arr[2], Col: arr[3]}
	return nil
}

// Token represents a single token from the source code.
type Token struct {
	Text string    `json:"text"`
	Span Span      `json:"span"`
	Type TokenType `json:"type"`

	// String token fields
	Value *string `json:"value,omitempty"`

	// Numeric token fields
	Int *int64 `json:"int,omitempty"`

	// Delimiter fields (for '[' tokens)
	ClosedBy []string `json:"closed_by,omitempty"`

	// Newline tracking fields
	LnBefore *bool `json:"ln_before,omitempty"` // True if token was preceded by a newline
}

// NewToken creates a new token with the basic required fields.
func NewToken(text string, tokenType TokenType, span Span) *Token {
	return &Token{
		Text: text,
		Type: tokenType,
		Span: span,
	}
}

// NewStringToken creates a new string token with interpreted value.
func NewStringToken(text, value string, span Span) *Token {
	return &Token{
		Text:  text,
		Type:  StringLiteral,
		Span:  span,
		Value: &value,
	}
}

// NewNumericToken creates a new integer token.
func NewNumericToken(text string, value int64, span Span) *Token {
	return &Token{
		Text: text,
		Type: NumericLiteral,
		Span: span,
		Int:  &value,
	}
}

// NewDelimiterToken creates a new open delimiter token.
func NewDelimiterToken(text string, closedBy []string, span Span) *Token {
	return &Token{
		Text:     text,
		Type:     OpenDelimiter,
		Span:     span,
		ClosedBy: closedBy,
	}
}
