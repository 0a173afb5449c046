package tokenizer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/spicery/swagcod/pkg/parselib"
)

// The lexical grammar is a combinator tree over runes. The threaded state is the
// Position of the cursor, which only spanned and tracked consult and update.

// item is one step of the tokenizer: either a token or a piece of trivia.
type item struct {
	token   *Token
	newline bool // trivia only: whether it contained a line break
}

type grammar struct {
	rules *TokenizerRules
	item  parselib.Parser[item, Position, rune]
	all   parselib.Parser[[]item, Position, rune]
}

func newGrammar(rules *TokenizerRules) *grammar {
	g := &grammar{rules: rules}

	trivia := parselib.Map(tracked(parselib.Choice(
		whitespace(),
		blockComment(),
		lineComment(),
	)), func(newline bool) item { return item{newline: newline} })

	alternatives := []parselib.Parser[*Token, Position, rune]{
		numericLiteral(),
		stringLiteral('"'),
		stringLiteral('\''),
		g.identifier(),
	}
	alternatives = append(alternatives, g.symbols()...)
	alternatives = append(alternatives, unclassified())

	token := parselib.Map(spanned(parselib.Choice(alternatives...)),
		func(tok *Token) item { return item{token: tok} })

	g.item = parselib.Choice(trivia, token)
	g.all = parselib.Many(g.item)
	return g
}

func char(pred func(rune) bool) parselib.Parser[rune, Position, rune] {
	return parselib.AcceptCondition[Position](pred)
}

// literal matches text as a whole. A partial match fails cleanly at the entry
// cursor, so "-" can still be tried as an operator after "--" fails.
func literal(text string) parselib.Parser[[]rune, Position, rune] {
	multi := parselib.AcceptSpecificMulti[Position]([]rune(text))
	return parselib.Attempt(parselib.NewParser(multi.Parse))
}

// spanned fills in the text and span of the token produced by p.
func spanned(p parselib.Parser[*Token, Position, rune]) parselib.Parser[*Token, Position, rune] {
	return parselib.NewBacktrackParser(func(start Position, in parselib.Cursor[rune]) (parselib.Result[*Token, Position, rune], error) {
		res, err := p.Parse(start, in)
		if err != nil {
			return res, err
		}
		consumed := in.Take(in.Len() - res.Rest.Len())
		end := start.advance(consumed)
		res.Value.Text = string(consumed)
		res.Value.Span = Span{Start: start, End: end}
		res.State = end
		return res, nil
	})
}

// tracked advances the position over whatever p consumed.
func tracked[V any](p parselib.Parser[V, Position, rune]) parselib.Parser[V, Position, rune] {
	return parselib.NewBacktrackParser(func(pos Position, in parselib.Cursor[rune]) (parselib.Result[V, Position, rune], error) {
		res, err := p.Parse(pos, in)
		if err != nil {
			return res, err
		}
		res.State = pos.advance(in.Take(in.Len() - res.Rest.Len()))
		return res, nil
	})
}

func isNewline(r rune) bool {
	return r == '\n' || r == '\r'
}

func whitespace() parselib.Parser[bool, Position, rune] {
	return parselib.Map(parselib.Many1(char(unicode.IsSpace)), func(rs []rune) bool {
		return strings.ContainsAny(string(rs), "\n\r")
	})
}

// lineComment matches "--" up to, but not including, the end of the line.
func lineComment() parselib.Parser[bool, Position, rune] {
	open := literal("--")
	body := parselib.Many(char(func(r rune) bool { return !isNewline(r) }))
	return parselib.NewParser(func(pos Position, in parselib.Cursor[rune]) (parselib.Result[bool, Position, rune], error) {
		res, err := open.Parse(pos, in)
		if err != nil {
			return parselib.Result[bool, Position, rune]{}, err
		}
		rest, err := body.Parse(res.State, res.Rest)
		if err != nil {
			return parselib.Result[bool, Position, rune]{}, err
		}
		return parselib.Result[bool, Position, rune]{State: rest.State, Rest: rest.Rest}, nil
	})
}

// blockComment matches "--[[ ... ]]". Once the opener has matched, a missing
// closer is a committed failure.
func blockComment() parselib.Parser[bool, Position, rune] {
	open := literal("--[[")
	shut := literal("]]")
	closer := []rune("]]")
	body := parselib.Many(parselib.AcceptInputCondition[Position](func(c parselib.Cursor[rune]) bool {
		return !c.HasPrefix(closer)
	}))
	return parselib.NewParser(func(pos Position, in parselib.Cursor[rune]) (parselib.Result[bool, Position, rune], error) {
		res, err := open.Parse(pos, in)
		if err != nil {
			return parselib.Result[bool, Position, rune]{}, err
		}
		inner, err := body.Parse(res.State, res.Rest)
		if err != nil {
			return parselib.Result[bool, Position, rune]{}, err
		}
		end, err := shut.Parse(inner.State, inner.Rest)
		if err != nil {
			return parselib.Result[bool, Position, rune]{}, err
		}
		newline := strings.ContainsAny(string(inner.Value), "\n\r")
		return parselib.Result[bool, Position, rune]{Value: newline, State: end.State, Rest: end.Rest}, nil
	})
}

func numericLiteral() parselib.Parser[*Token, Position, rune] {
	return parselib.Map(parselib.Many1(char(unicode.IsDigit)), func(digits []rune) *Token {
		tok := NewToken("", NumericLiteral, Span{})
		if n, err := strconv.ParseInt(string(digits), 10, 64); err == nil {
			tok.Int = &n
		}
		return tok
	})
}

var escapes = map[rune]string{
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'n':  "\n",
	'r':  "\r",
	't':  "\t",
	'v':  "\v",
	'\\': "\\",
	'"':  "\"",
	'\'': "'",
}

// escapeSequence decodes a backslash escape. Unknown escapes are kept as written.
func escapeSequence() parselib.Parser[string, Position, rune] {
	backslash := parselib.AcceptSpecific[Position]('\\')
	next := char(func(r rune) bool { return !isNewline(r) })
	return parselib.NewParser(func(pos Position, in parselib.Cursor[rune]) (parselib.Result[string, Position, rune], error) {
		res, err := backslash.Parse(pos, in)
		if err != nil {
			return parselib.Result[string, Position, rune]{}, err
		}
		esc, err := next.Parse(res.State, res.Rest)
		if err != nil {
			return parselib.Result[string, Position, rune]{}, err
		}
		value, ok := escapes[esc.Value]
		if !ok {
			value = "\\" + string(esc.Value)
		}
		return parselib.Result[string, Position, rune]{Value: value, State: esc.State, Rest: esc.Rest}, nil
	})
}

// stringLiteral matches a single-line string delimited by quote. Once the opening
// quote has matched, a missing closing quote is a committed failure.
func stringLiteral(quote rune) parselib.Parser[*Token, Position, rune] {
	open := parselib.AcceptSpecific[Position](quote)
	plain := parselib.Map(char(func(r rune) bool {
		return r != quote && r != '\\' && !isNewline(r)
	}), func(r rune) string { return string(r) })
	body := parselib.Many(parselib.Choice(escapeSequence(), plain))
	return parselib.NewParser(func(pos Position, in parselib.Cursor[rune]) (parselib.Result[*Token, Position, rune], error) {
		res, err := open.Parse(pos, in)
		if err != nil {
			return parselib.Result[*Token, Position, rune]{}, err
		}
		parts, err := body.Parse(res.State, res.Rest)
		if err != nil {
			return parselib.Result[*Token, Position, rune]{}, err
		}
		end, err := open.Parse(parts.State, parts.Rest)
		if err != nil {
			return parselib.Result[*Token, Position, rune]{}, err
		}
		tok := NewStringToken("", strings.Join(parts.Value, ""), Span{})
		return parselib.Result[*Token, Position, rune]{Value: tok, State: end.State, Rest: end.Rest}, nil
	})
}

func isIdentStart(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r < unicode.MaxASCII && unicode.IsDigit(r))
}

// identifier matches a name and classifies it as a keyword or a variable.
func (g *grammar) identifier() parselib.Parser[*Token, Position, rune] {
	first := char(isIdentStart)
	rest := parselib.Many(char(isIdentPart))
	return parselib.NewParser(func(pos Position, in parselib.Cursor[rune]) (parselib.Result[*Token, Position, rune], error) {
		head, err := first.Parse(pos, in)
		if err != nil {
			return parselib.Result[*Token, Position, rune]{}, err
		}
		tail, err := rest.Parse(head.State, head.Rest)
		if err != nil {
			return parselib.Result[*Token, Position, rune]{}, err
		}
		text := string(head.Value) + string(tail.Value)
		tokenType := VariableToken
		if g.rules.Keywords[text] {
			tokenType = KeywordToken
		}
		return parselib.Result[*Token, Position, rune]{Value: NewToken(text, tokenType, Span{}), State: tail.State, Rest: tail.Rest}, nil
	})
}

// symbols returns one alternative per operator and bracket, longest text first.
func (g *grammar) symbols() []parselib.Parser[*Token, Position, rune] {
	var parsers []parselib.Parser[*Token, Position, rune]
	for _, text := range g.rules.symbols() {
		entry := g.rules.TokenLookup[text]
		parsers = append(parsers, parselib.Map(literal(text), func([]rune) *Token {
			switch entry.Type {
			case CustomOpenDelimiter:
				return NewDelimiterToken("", entry.ClosedBy, Span{})
			case CustomCloseDelimiter:
				return NewToken("", CloseDelimiter, Span{})
			}
			return NewToken("", OperatorToken, Span{})
		}))
	}
	return parsers
}

func unclassified() parselib.Parser[*Token, Position, rune] {
	return parselib.Map(parselib.AcceptAny[Position, rune](), func(rune) *Token {
		return NewToken("", UnclassifiedToken, Span{})
	})
}
