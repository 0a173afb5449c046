package tokenizer

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RulesFile represents the structure of a YAML rules file
type RulesFile struct {
	Keyword  []KeywordRule  `yaml:"keyword"`
	Operator []OperatorRule `yaml:"operator"`
	Bracket  []BracketRule  `yaml:"bracket"`
}

// KeywordRule represents a reserved word
type KeywordRule struct {
	Text string `yaml:"text"`
}

// OperatorRule represents an operator or punctuation token rule
type OperatorRule struct {
	Text string `yaml:"text"`
}

// BracketRule represents a bracket token rule
type BracketRule struct {
	Text     string   `yaml:"text"`
	ClosedBy []string `yaml:"closed_by"`
}

// CustomRuleType represents the type of custom rule
type CustomRuleType int

const (
	CustomKeyword CustomRuleType = iota
	CustomOperator
	CustomOpenDelimiter
	CustomCloseDelimiter
)

// CustomRuleEntry holds the rule type and any associated data
type CustomRuleEntry struct {
	Type     CustomRuleType
	ClosedBy []string // Only for CustomOpenDelimiter
}

// TokenizerRules holds all the rule maps that can be customized
type TokenizerRules struct {
	Keywords          map[string]bool
	Operators         map[string]bool
	DelimiterMappings map[string][]string

	// Precomputed lookup map for efficient matching
	TokenLookup map[string]CustomRuleEntry
}

// DefaultRules returns the default tokenizer rules
func DefaultRules() *TokenizerRules {
	rules := &TokenizerRules{
		Keywords:          getDefaultKeywords(),
		Operators:         getDefaultOperators(),
		DelimiterMappings: getDefaultDelimiterMappings(),
	}

	// Default rules should never have conflicts, so we panic if there's an error
	if err := rules.BuildTokenLookup(); err != nil {
		panic(fmt.Sprintf("Invalid default rules: %v", err))
	}

	return rules
}

// LoadRulesFile loads and parses a YAML rules file
func LoadRulesFile(filename string) (*RulesFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file '%s': %w", filename, err)
	}

	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in rules file '%s': %w", filename, err)
	}

	logger().Debugf("loaded rules file %s: %d keywords, %d operators, %d brackets",
		filename, len(rules.Keyword), len(rules.Operator), len(rules.Bracket))
	return &rules, nil
}

// ApplyRulesToDefaults applies the rules from a RulesFile to create a new TokenizerRules.
// Each non-empty section replaces the corresponding default section.
// Returns an error if there are conflicting token definitions.
func ApplyRulesToDefaults(rules *RulesFile) (*TokenizerRules, error) {
	tokenizerRules := DefaultRules()

	if len(rules.Keyword) > 0 {
		tokenizerRules.Keywords = make(map[string]bool)
		for _, rule := range rules.Keyword {
			tokenizerRules.Keywords[rule.Text] = true
		}
	}

	if len(rules.Operator) > 0 {
		tokenizerRules.Operators = make(map[string]bool)
		for _, rule := range rules.Operator {
			tokenizerRules.Operators[rule.Text] = true
		}
	}

	if len(rules.Bracket) > 0 {
		tokenizerRules.DelimiterMappings = make(map[string][]string)
		for _, rule := range rules.Bracket {
			tokenizerRules.DelimiterMappings[rule.Text] = rule.ClosedBy
		}
	}

	if err := tokenizerRules.BuildTokenLookup(); err != nil {
		return nil, err
	}

	return tokenizerRules, nil
}

// RulesFileFrom converts rules back into the YAML file layout, sorted for stable output.
func RulesFileFrom(rules *TokenizerRules) *RulesFile {
	rulesFile := &RulesFile{}
	for _, text := range sortedKeys(rules.Keywords) {
		rulesFile.Keyword = append(rulesFile.Keyword, KeywordRule{Text: text})
	}
	for _, text := range sortedKeys(rules.Operators) {
		rulesFile.Operator = append(rulesFile.Operator, OperatorRule{Text: text})
	}
	for _, text := range sortedKeys(rules.DelimiterMappings) {
		rulesFile.Bracket = append(rulesFile.Bracket, BracketRule{
			Text:     text,
			ClosedBy: rules.DelimiterMappings[text],
		})
	}
	return rulesFile
}

// MarshalYAML renders rules as a YAML rules file.
func (rules *TokenizerRules) MarshalYAML() (interface{}, error) {
	return RulesFileFrom(rules), nil
}

func getDefaultKeywords() map[string]bool {
	m := make(map[string]bool)
	for _, kw := range []string{
		"and", "break", "do", "else", "elseif", "end", "false", "for",
		"function", "goto", "if", "in", "local", "nil", "not", "or",
		"repeat", "return", "then", "true", "until", "while",
	} {
		m[kw] = true
	}
	return m
}

func getDefaultOperators() map[string]bool {
	m := make(map[string]bool)
	for _, op := range []string{
		"+", "-", "*", "/", "//", "%", "^", "#",
		"&", "~", "|", "<<", ">>",
		"==", "~=", "<=", ">=", "<", ">", "=",
		";", ":", "::", ",", ".", "..", "...",
	} {
		m[op] = true
	}
	return m
}

func getDefaultDelimiterMappings() map[string][]string {
	return map[string][]string{
		"(": {")"},
		"[": {"]"},
		"{": {"}"},
	}
}

// BuildTokenLookup creates the precomputed lookup map for efficient token matching.
// Returns an error if a token is defined in multiple rules.
func (rules *TokenizerRules) BuildTokenLookup() error {
	rules.TokenLookup = make(map[string]CustomRuleEntry)
	tokenSources := make(map[string]string) // Track which rule type defined each token

	addToken := func(token string, entry CustomRuleEntry, ruleTypeName string) error {
		if token == "" {
			return fmt.Errorf("empty token text in %s rules", ruleTypeName)
		}
		if existingSource, exists := tokenSources[token]; exists {
			return fmt.Errorf("token '%s' is defined in both %s and %s rules", token, existingSource, ruleTypeName)
		}
		tokenSources[token] = ruleTypeName
		rules.TokenLookup[token] = entry
		return nil
	}

	for _, token := range sortedKeys(rules.Keywords) {
		if err := addToken(token, CustomRuleEntry{Type: CustomKeyword}, "keyword"); err != nil {
			return err
		}
	}

	for _, token := range sortedKeys(rules.Operators) {
		if err := addToken(token, CustomRuleEntry{Type: CustomOperator}, "operator"); err != nil {
			return err
		}
	}

	for _, token := range sortedKeys(rules.DelimiterMappings) {
		entry := CustomRuleEntry{Type: CustomOpenDelimiter, ClosedBy: rules.DelimiterMappings[token]}
		if err := addToken(token, entry, "bracket"); err != nil {
			return err
		}
	}

	// Close delimiters are derived from closed_by fields and may be shared by several brackets
	for _, token := range sortedKeys(rules.DelimiterMappings) {
		for _, closer := range rules.DelimiterMappings[token] {
			if source, exists := tokenSources[closer]; exists && source != "closer" {
				return fmt.Errorf("token '%s' is defined in both %s and closer rules", closer, source)
			}
			tokenSources[closer] = "closer"
			rules.TokenLookup[closer] = CustomRuleEntry{Type: CustomCloseDelimiter}
		}
	}

	return nil
}

// symbols returns every non-keyword token text, longest first so that a choice
// over them prefers "..." to ".." to ".".
func (rules *TokenizerRules) symbols() []string {
	var texts []string
	for text, entry := range rules.TokenLookup {
		if entry.Type != CustomKeyword {
			texts = append(texts, text)
		}
	}
	sort.Slice(texts, func(i, j int) bool {
		li, lj := len([]rune(texts[i])), len([]rune(texts[j]))
		if li != lj {
			return li > lj
		}
		return texts[i] < texts[j]
	})
	return texts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
