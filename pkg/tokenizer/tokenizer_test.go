package tokenizer

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/spicery/swagcod/pkg/parselib"
	"gopkg.in/yaml.v3"
)

func TestBasicTokenisation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int // expected number of tokens
	}{
		{"Empty input", "", 0},
		{"Only whitespace", "  \n\t ", 0},
		{"Single identifier", "hello", 1},
		{"Multiple identifiers", "hello world", 2},
		{"Number", "42", 1},
		{"String", `"hello"`, 1},
		{"Operator", "+", 1},
		{"Delimiter", "(", 1},
		{"Complex expression", "local function foo(x) return x + 1 end", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenizer := NewTokenizer(tt.input)
			tokens, err := tokenizer.Tokenize()

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if len(tokens) != tt.expected {
				t.Errorf("Expected %d tokens, got %d", tt.expected, len(tokens))
			}
		})
	}
}

func TestStringTokens(t *testing.T) {
	tests := []struct {
		input         string
		expectedText  string
		expectedValue string
	}{
		{`"hello"`, `"hello"`, "hello"},
		{`'world'`, `'world'`, "world"},
		{`""`, `""`, ""},
		{`"escaped\n"`, `"escaped\n"`, "escaped\n"},
		{`"quote\"test"`, `"quote\"test"`, `quote"test`},
		{`'it\'s'`, `'it\'s'`, "it's"},
		{`"it's"`, `"it's"`, "it's"},
		{`"unknown\q"`, `"unknown\q"`, `unknown\q`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokenizer := NewTokenizer(tt.input)
			tokens, err := tokenizer.Tokenize()

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if len(tokens) != 1 {
				t.Errorf("Expected 1 token, got %d", len(tokens))
				return
			}

			token := tokens[0]
			if token.Type != StringLiteral {
				t.Errorf("Expected string token, got %s", token.Type)
			}

			if token.Text != tt.expectedText {
				t.Errorf("Expected text '%s', got '%s'", tt.expectedText, token.Text)
			}

			if token.Value == nil {
				t.Errorf("Expected value to be set")
				return
			}

			if *token.Value != tt.expectedValue {
				t.Errorf("Expected value '%s', got '%s'", tt.expectedValue, *token.Value)
			}
		})
	}
}

func TestNumericTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"42", 42},
		{"007", 7},
		{"9223372036854775807", 9223372036854775807},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(tokens) != 1 {
				t.Fatalf("Expected 1 token, got %d", len(tokens))
			}
			token := tokens[0]
			if token.Type != NumericLiteral {
				t.Errorf("Expected numeric token, got %s", token.Type)
			}
			if token.Int == nil || *token.Int != tt.expected {
				t.Errorf("Expected value %d, got %v", tt.expected, token.Int)
			}
		})
	}
}

func TestNumericOverflowKeepsText(t *testing.T) {
	tokens, err := NewTokenizer("99999999999999999999").Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Type != NumericLiteral {
		t.Fatalf("Expected a single numeric token, got %+v", tokens)
	}
	if tokens[0].Int != nil {
		t.Errorf("Expected no integer value for an out of range literal, got %d", *tokens[0].Int)
	}
	if tokens[0].Text != "99999999999999999999" {
		t.Errorf("Expected the literal text to be kept, got '%s'", tokens[0].Text)
	}
}

func TestKeywordClassification(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"local", KeywordToken},
		{"function", KeywordToken},
		{"end", KeywordToken},
		{"nil", KeywordToken},
		{"localx", VariableToken},
		{"_end", VariableToken},
		{"x1", VariableToken},
		{"End", VariableToken},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(tokens) != 1 {
				t.Fatalf("Expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Type != tt.expected {
				t.Errorf("Expected %s token, got %s", tt.expected, tokens[0].Type)
			}
		})
	}
}

func TestOperatorTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"a..b", []string{"a", "..", "b"}},
		{"...", []string{"..."}},
		{"x==y", []string{"x", "==", "y"}},
		{"x ~= y", []string{"x", "~=", "y"}},
		{"a//b", []string{"a", "//", "b"}},
		{"a<=b", []string{"a", "<=", "b"}},
		{"::label::", []string{"::", "label", "::"}},
		{"a - b", []string{"a", "-", "b"}},
		{"-x", []string{"-", "x"}},
		{"..x", []string{"..", "x"}},
		{"a<<=b", []string{"a", "<<", "=", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			var texts []string
			for _, token := range tokens {
				texts = append(texts, token.Text)
			}
			if !reflect.DeepEqual(texts, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, texts)
			}
			for _, token := range tokens {
				if strings.ContainsAny(token.Text, ".=~/<:-") && token.Type != OperatorToken {
					t.Errorf("Expected '%s' to be an operator, got %s", token.Text, token.Type)
				}
			}
		})
	}
}

func TestDelimiterTokens(t *testing.T) {
	tokens, err := NewTokenizer("f{[()]}").Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []struct {
		text      string
		tokenType TokenType
		closedBy  []string
	}{
		{"f", VariableToken, nil},
		{"{", OpenDelimiter, []string{"}"}},
		{"[", OpenDelimiter, []string{"]"}},
		{"(", OpenDelimiter, []string{")"}},
		{")", CloseDelimiter, nil},
		{"]", CloseDelimiter, nil},
		{"}", CloseDelimiter, nil},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Text != exp.text || tokens[i].Type != exp.tokenType {
			t.Errorf("Token %d: expected %s '%s', got %s '%s'", i, exp.tokenType, exp.text, tokens[i].Type, tokens[i].Text)
		}
		if !reflect.DeepEqual(tokens[i].ClosedBy, exp.closedBy) {
			t.Errorf("Token %d: expected closed_by %v, got %v", i, exp.closedBy, tokens[i].ClosedBy)
		}
	}
}

func TestUnclassifiedTokens(t *testing.T) {
	tokens, err := NewTokenizer("a @ b").Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens, got %d", len(tokens))
	}
	if tokens[1].Type != UnclassifiedToken || tokens[1].Text != "@" {
		t.Errorf("Expected unclassified '@', got %s '%s'", tokens[1].Type, tokens[1].Text)
	}
}

func TestCommentsAreIgnored(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Line comment", "hello -- this is a comment\nworld"},
		{"Line comment at end of input", "hello world -- trailing"},
		{"Block comment", "hello --[[ spans\nlines ]] world"},
		{"Block comment with brackets", "hello --[[ a ] b [[ c ]] world"},
		{"Dashes that are not a block comment", "hello --[ not a block\nworld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if len(tokens) != 2 {
				t.Fatalf("Expected 2 tokens (ignoring comment), got %d", len(tokens))
			}

			if tokens[0].Text != "hello" {
				t.Errorf("Expected first token to be 'hello', got '%s'", tokens[0].Text)
			}

			if tokens[1].Text != "world" {
				t.Errorf("Expected second token to be 'world', got '%s'", tokens[1].Text)
			}
		})
	}
}

func TestTokenSpans(t *testing.T) {
	tokens, err := NewTokenizer("local x\n  = 10").Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []Span{
		{Position{1, 1}, Position{1, 6}},
		{Position{1, 7}, Position{1, 8}},
		{Position{2, 3}, Position{2, 4}},
		{Position{2, 5}, Position{2, 7}},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, span := range expected {
		if tokens[i].Span != span {
			t.Errorf("Token %d ('%s'): expected span %+v, got %+v", i, tokens[i].Text, span, tokens[i].Span)
		}
	}
}

func TestNewlineTracking(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []bool // whether each token has ln_before set
	}{
		{"Single line, no newlines", "a b c", []bool{false, false, false}},
		{"Simple newline between tokens", "a\nb", []bool{false, true}},
		{"Multiple newlines", "a\n\nb", []bool{false, true}},
		{"Leading newline", "\na", []bool{true}},
		{"Newline after line comment", "a -- note\nb", []bool{false, true}},
		{"Newline inside block comment", "a --[[\n]] b", []bool{false, true}},
		{"Block comment on one line", "a --[[ x ]] b", []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d", len(tt.expected), len(tokens))
			}
			for i, want := range tt.expected {
				got := tokens[i].LnBefore != nil && *tokens[i].LnBefore
				if got != want {
					t.Errorf("Token %d ('%s'): expected ln_before %v, got %v", i, tokens[i].Text, want, got)
				}
			}
		})
	}
}

func TestTokenisationErrors(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedTokens int
		expectedError  string
	}{
		{"Unterminated string", `x = "abc`, 2, "line 1, column 9: unterminated string"},
		{"Line break in string", "\"ab\ncd\"", 0, "line 1, column 4: unterminated string"},
		{"Unterminated single quoted string", "a\n'b", 1, "line 2, column 3: unterminated string"},
		{"Backslash at end of input", `"ab\`, 0, "unterminated string"},
		{"Unterminated block comment", "a --[[ never closed", 1, "line 1, column 20: unterminated block comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err == nil {
				t.Fatalf("Expected an error")
			}
			if !errors.Is(err, parselib.ErrCommitted) {
				t.Errorf("Expected a committed failure, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.expectedError, err)
			}
			if len(tokens) != tt.expectedTokens {
				t.Errorf("Expected %d tokens before the error, got %d", tt.expectedTokens, len(tokens))
			}
		})
	}
}

func TestLexMatchesTokenize(t *testing.T) {
	input := "local t = { 1, 'two', [3] = x .. y } -- done\nreturn t"

	fromLoop, err := NewTokenizer(input).Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fromLex, err := Lex(input, DefaultRules())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(fromLoop, fromLex) {
		t.Errorf("Expected Lex and Tokenize to agree")
	}
}

func TestLexError(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedError string
	}{
		{"Unterminated string", `print("unterminated)`, "line 1, column 21: unterminated string"},
		{"Unterminated block comment", "x = 1\n--[[ open", "line 2, column 10: unterminated block comment"},
		{"Line break in string", "local s = 'a\nb'", "line 1, column 13: unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input, DefaultRules())
			if err == nil {
				t.Fatalf("Expected an error")
			}
			if tokens != nil {
				t.Errorf("Expected no tokens, got %d", len(tokens))
			}
			if !errors.Is(err, parselib.ErrCommitted) {
				t.Errorf("Expected a committed failure, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.expectedError, err)
			}

			_, loopErr := NewTokenizer(tt.input).Tokenize()
			if loopErr == nil || loopErr.Error() != err.Error() {
				t.Errorf("Expected Lex and Tokenize to report the same error, got '%v' and '%v'", err, loopErr)
			}
		})
	}
}

func TestLexConcurrentRuns(t *testing.T) {
	inputs := []string{
		"local a = 1",
		"for i = 1, 10 do print(i) end",
		"return { x = 'y', [1] = \"z\" }",
		"-- only a comment",
	}

	expected := make([][]*Token, len(inputs))
	for i, input := range inputs {
		tokens, err := Lex(input, DefaultRules())
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", input, err)
		}
		expected[i] = tokens
	}

	rules := DefaultRules()
	results := make([][]*Token, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Lex(input, rules)
		}()
	}
	wg.Wait()

	for i := range inputs {
		if !reflect.DeepEqual(results[i], expected[i]) {
			t.Errorf("Input %d: concurrent run disagrees with sequential run", i)
		}
	}
}

func TestCarriageReturns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		span  Span // span of the last token
	}{
		{"Lone carriage return", "a\rb", Span{Position{2, 1}, Position{2, 2}}},
		{"CRLF counts once", "a\r\nb", Span{Position{2, 1}, Position{2, 2}}},
		{"Two CRLFs", "a\r\n\r\nb", Span{Position{3, 1}, Position{3, 2}}},
		{"LF then CR", "a\n\rb", Span{Position{3, 1}, Position{3, 2}}},
		{"CRLF in block comment", "--[[\r\n]] x", Span{Position{2, 4}, Position{2, 5}}},
		{"Line comment ended by CR", "a -- c\rb", Span{Position{2, 1}, Position{2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			last := tokens[len(tokens)-1]
			if last.Span != tt.span {
				t.Errorf("Expected span %+v, got %+v", tt.span, last.Span)
			}
			if last.LnBefore == nil || !*last.LnBefore {
				t.Errorf("Expected ln_before on '%s'", last.Text)
			}
		})
	}
}

func TestJSONSerialization(t *testing.T) {
	input := `local function hello(name) return "Hello, " .. name end`
	tokenizer := NewTokenizer(input)
	tokens, err := tokenizer.Tokenize()

	if err != nil {
		t.Errorf("Unexpected error: %v", err)
		return
	}

	for i, token := range tokens {
		jsonBytes, err := json.Marshal(token)
		if err != nil {
			t.Errorf("Failed to serialize token %d to JSON: %v", i, err)
			continue
		}

		var deserializedToken Token
		err = json.Unmarshal(jsonBytes, &deserializedToken)
		if err != nil {
			t.Errorf("Failed to deserialize token %d from JSON: %v", i, err)
			continue
		}

		if !reflect.DeepEqual(&deserializedToken, token) {
			t.Errorf("Token %d mismatch after JSON round-trip: expected %+v, got %+v", i, token, deserializedToken)
		}
	}
}

func TestSpanJSONIsCompact(t *testing.T) {
	data, err := json.Marshal(Span{Position{1, 2}, Position{3, 4}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != "[1,2,3,4]" {
		t.Errorf("Expected [1,2,3,4], got %s", data)
	}
}

func TestLoadRulesFile(t *testing.T) {
	rulesContent := `keyword:
  - text: "fn"
  - text: "let"
operator:
  - text: "=>"
  - text: "="
`

	tmpFile := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(tmpFile, []byte(rulesContent), 0o644); err != nil {
		t.Fatalf("Failed to create temp rules file: %v", err)
	}

	rules, err := LoadRulesFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to load rules file: %v", err)
	}

	if len(rules.Keyword) != 2 || rules.Keyword[0].Text != "fn" {
		t.Errorf("Expected keyword rules fn and let, got %+v", rules.Keyword)
	}
	if len(rules.Operator) != 2 || rules.Operator[0].Text != "=>" {
		t.Errorf("Expected operator rules => and =, got %+v", rules.Operator)
	}
	if len(rules.Bracket) != 0 {
		t.Errorf("Expected no bracket rules, got %+v", rules.Bracket)
	}

	tokenizerRules, err := ApplyRulesToDefaults(rules)
	if err != nil {
		t.Fatalf("Failed to apply rules: %v", err)
	}

	tokens, err := NewTokenizerWithRules("let f = fn x => local", tokenizerRules).Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []TokenType{KeywordToken, VariableToken, OperatorToken, KeywordToken, VariableToken, OperatorToken, VariableToken}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tokenType := range expected {
		if tokens[i].Type != tokenType {
			t.Errorf("Token %d ('%s'): expected %s, got %s", i, tokens[i].Text, tokenType, tokens[i].Type)
		}
	}
	if tokens[5].Text != "=>" {
		t.Errorf("Expected '=>' to be matched as one operator, got '%s'", tokens[5].Text)
	}
}

func TestLoadRulesFileErrors(t *testing.T) {
	if _, err := LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("keyword: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to create temp rules file: %v", err)
	}
	if _, err := LoadRulesFile(bad); err == nil || !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("Expected a YAML parse error, got %v", err)
	}
}

func TestConflictingRules(t *testing.T) {
	tests := []struct {
		name  string
		rules *RulesFile
	}{
		{"Keyword and operator", &RulesFile{
			Keyword:  []KeywordRule{{Text: "and"}},
			Operator: []OperatorRule{{Text: "and"}},
		}},
		{"Operator and bracket", &RulesFile{
			Operator: []OperatorRule{{Text: "("}},
		}},
		{"Closer and operator", &RulesFile{
			Operator: []OperatorRule{{Text: ")"}},
		}},
		{"Empty text", &RulesFile{
			Keyword: []KeywordRule{{Text: ""}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ApplyRulesToDefaults(tt.rules); err == nil {
				t.Errorf("Expected a conflict error")
			}
		})
	}
}

func TestRulesYAMLRoundTrip(t *testing.T) {
	defaults := DefaultRules()
	data, err := yaml.Marshal(defaults)
	if err != nil {
		t.Fatalf("Failed to marshal rules: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		t.Fatalf("Failed to write rules: %v", err)
	}

	loaded, err := LoadRulesFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	applied, err := ApplyRulesToDefaults(loaded)
	if err != nil {
		t.Fatalf("Failed to apply rules: %v", err)
	}

	if !reflect.DeepEqual(applied.TokenLookup, defaults.TokenLookup) {
		t.Errorf("Expected rules to survive a YAML round trip")
	}
}
