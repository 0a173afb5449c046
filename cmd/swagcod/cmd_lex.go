package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spicery/swagcod/pkg/tokenizer"
)

func newLexCmd() *cobra.Command {
	var inputFile, outputFile, rulesFile string
	var exit0 bool

	cmd := &cobra.Command{
		Use:   "lex",
		Short: "Tokenize Lua source and write one JSON token per line",
		Long: `Tokenize Lua source and write one JSON token per line.

Input is read from stdin unless --input is given, and output goes to stdout
unless --output is given. Tokens recognised before a tokenisation error are
still written.`,
		Example: `  swagcod lex --input source.lua
  swagcod lex --rules custom.yaml --input source.lua --output tokens.jsonl
  echo "local x = 1" | swagcod lex`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(inputFile)
			if err != nil {
				return err
			}

			rules := tokenizer.DefaultRules()
			if rulesFile != "" {
				loaded, err := tokenizer.LoadRulesFile(rulesFile)
				if err != nil {
					return err
				}
				rules, err = tokenizer.ApplyRulesToDefaults(loaded)
				if err != nil {
					return fmt.Errorf("apply rules: %w", err)
				}
			}

			tokens, tokenizeErr := tokenizer.NewTokenizerWithRules(input, rules).Tokenize()

			if err := writeTokens(outputFile, tokens); err != nil {
				return err
			}

			if tokenizeErr != nil && !exit0 {
				return tokenizeErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFile, "input", "", "Input file (defaults to stdin)")
	cmd.Flags().StringVar(&outputFile, "output", "", "Output file (defaults to stdout)")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file for custom tokenisation rules")
	cmd.Flags().BoolVar(&exit0, "exit0", false, "Exit with code 0 even on tokenisation errors")

	return cmd
}

func readInput(filename string) (string, error) {
	if filename == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("read input file: %w", err)
	}
	return string(data), nil
}

// writeTokens writes tokens as JSON lines to filename, or stdout when it is empty.
func writeTokens(filename string, tokens []*tokenizer.Token) error {
	if filename == "" {
		return encodeTokens(os.Stdout, tokens)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := encodeTokens(file, tokens); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

func encodeTokens(w io.Writer, tokens []*tokenizer.Token) error {
	enc := json.NewEncoder(w)
	for _, token := range tokens {
		if err := enc.Encode(token); err != nil {
			return fmt.Errorf("encode token: %w", err)
		}
	}
	return nil
}
